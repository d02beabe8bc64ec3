package voice

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// PortAudio-backed device adapters. Each adapter pairs its own
// Initialize/Terminate calls; the PortAudio library refcounts them.

// MicCapture streams fixed-size frames from the default input device.
type MicCapture struct {
	rate      int
	frameSize int

	mu      sync.Mutex
	stream  *portaudio.Stream
	frames  chan []float32
	started bool
}

func NewMicCapture(rate, frameSize int) *MicCapture {
	return &MicCapture{rate: rate, frameSize: frameSize}
}

func (m *MicCapture) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return fmt.Errorf("capture already started")
	}
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio init: %w", err)
	}

	frames := make(chan []float32, 8)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.rate), m.frameSize, func(in []float32) {
		frame := make([]float32, len(in))
		copy(frame, in)
		// Drop rather than stall the audio callback when the consumer lags.
		select {
		case frames <- frame:
		default:
		}
	})
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("start input stream: %w", err)
	}

	m.stream = stream
	m.frames = frames
	m.started = true
	return nil
}

func (m *MicCapture) Frames() <-chan []float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}

func (m *MicCapture) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return nil
	}
	m.started = false
	err := m.stream.Stop()
	m.stream.Close()
	m.stream = nil
	portaudio.Terminate()
	close(m.frames)
	return err
}

// Speaker plays rendered blocks on the default output device.
type Speaker struct {
	rate      int
	frameSize int

	mu      sync.Mutex
	stream  *portaudio.Stream
	started bool
}

func NewSpeaker(rate, frameSize int) *Speaker {
	return &Speaker{rate: rate, frameSize: frameSize}
}

func (p *Speaker) Start(render func(out []float32)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return fmt.Errorf("speaker already started")
	}
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio init: %w", err)
	}

	stream, err := portaudio.OpenDefaultStream(0, 1, float64(p.rate), p.frameSize, func(out []float32) {
		render(out)
	})
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("open output stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("start output stream: %w", err)
	}

	p.stream = stream
	p.started = true
	return nil
}

func (p *Speaker) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return nil
	}
	p.started = false
	err := p.stream.Stop()
	p.stream.Close()
	p.stream = nil
	portaudio.Terminate()
	return err
}
