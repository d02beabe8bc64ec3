package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// State is the session lifecycle phase.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateActive
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// Status strings shown in the voice view.
const (
	StatusReady       = "VOICE_SYNC_READY"
	StatusConnecting  = "INITIATING_CORE..."
	StatusEstablished = "LUMIVOCAL: LINK_ESTABLISHED"
	StatusOffline     = "VOICE_SYNC_OFFLINE"
	StatusFailure     = "CORE_FAILURE"
)

var (
	// ErrSessionActive: Start on a session that isn't idle.
	ErrSessionActive = errors.New("voice: session already active")
	// ErrSessionClosed: the session was torn down while connecting.
	ErrSessionClosed = errors.New("voice: session closed")
)

// Transport is the live bidirectional link. LiveConn implements it; tests
// substitute a scripted fake.
type Transport interface {
	SendAudio(data string) error
	Read() (ServerEvent, error)
	Close() error
}

// Dialer opens a Transport. It blocks until the remote acknowledges.
type Dialer func(ctx context.Context) (Transport, error)

// Capture is a microphone input stream producing fixed-size float32
// frames. Stop must be safe to call at any point and must close Frames.
type Capture interface {
	Start() error
	Frames() <-chan []float32
	Stop() error
}

// Player drains rendered playback blocks, typically into a speaker device.
type Player interface {
	Start(render func(out []float32)) error
	Stop() error
}

// Session manages one voice link: capture → encode → send upstream, and
// receive → decode → schedule downstream. The two pumps share nothing but
// the playback scheduler. There is no reconnect: any transport error or
// remote close tears the whole session down.
type Session struct {
	mu        sync.Mutex
	state     State
	status    string
	transport Transport

	dial   Dialer
	mic    Capture
	player Player
	sched  *Scheduler
	log    zerolog.Logger
	wg     sync.WaitGroup
}

func NewSession(dial Dialer, mic Capture, player Player, log zerolog.Logger) *Session {
	return &Session{
		state:  StateIdle,
		status: StatusReady,
		dial:   dial,
		mic:    mic,
		player: player,
		sched:  NewScheduler(OutputRate),
		log:    log.With().Str("component", "voice").Logger(),
	}
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Status returns the display line for the voice view.
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Active reports whether audio is flowing.
func (s *Session) Active() bool {
	return s.State() == StateActive
}

// Scheduler exposes the playback schedule (for the player wiring and for
// inspection in the view).
func (s *Session) Scheduler() *Scheduler {
	return s.sched
}

// Start brings the session from idle to active: microphone first, then the
// live connection, then the playback device, then the two pumps. Any
// failure unwinds what was acquired and leaves the session idle with a
// failure status.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrSessionActive
	}
	s.state = StateConnecting
	s.status = StatusConnecting
	s.mu.Unlock()

	if err := s.mic.Start(); err != nil {
		s.abortStart(StatusFailure)
		return fmt.Errorf("microphone: %w", err)
	}

	conn, err := s.dial(ctx)
	if err != nil {
		s.mic.Stop()
		s.abortStart(StatusFailure)
		return fmt.Errorf("voice link: %w", err)
	}

	if err := s.player.Start(s.sched.Read); err != nil {
		conn.Close()
		s.mic.Stop()
		s.abortStart(StatusFailure)
		return fmt.Errorf("playback: %w", err)
	}

	s.mu.Lock()
	if s.state != StateConnecting {
		// torn down while we were dialing
		s.mu.Unlock()
		conn.Close()
		s.player.Stop()
		s.mic.Stop()
		return ErrSessionClosed
	}
	s.transport = conn
	s.state = StateActive
	s.status = StatusEstablished
	s.mu.Unlock()

	s.log.Info().Msg("voice session established")
	s.wg.Add(2)
	go s.pumpUpload(conn)
	go s.pumpDownload(conn)
	return nil
}

// Stop tears down the transport, the microphone and the playback device
// together. Idempotent: stopping an idle session is a no-op.
func (s *Session) Stop() error {
	return s.stop(StatusOffline)
}

func (s *Session) stop(status string) error {
	s.mu.Lock()
	if s.state == StateIdle || s.state == StateClosing {
		s.mu.Unlock()
		return nil
	}
	s.state = StateClosing
	conn := s.transport
	s.transport = nil
	s.mu.Unlock()

	if conn != nil {
		conn.Close() // unblocks the download pump
	}
	s.mic.Stop() // closes Frames, unblocks the upload pump
	s.player.Stop()
	s.wg.Wait()
	s.sched.Flush()

	s.mu.Lock()
	s.state = StateIdle
	s.status = status
	s.mu.Unlock()
	s.log.Info().Str("status", status).Msg("voice session stopped")
	return nil
}

// abortStart rolls a failed Start back to idle.
func (s *Session) abortStart(status string) {
	s.mu.Lock()
	if s.state == StateConnecting {
		s.state = StateIdle
		s.status = status
	}
	s.mu.Unlock()
}

// pumpUpload is the capture → encode → send direction. Frames are sent as
// produced; there is no backpressure from the remote.
func (s *Session) pumpUpload(conn Transport) {
	defer s.wg.Done()
	for frame := range s.mic.Frames() {
		if err := conn.SendAudio(EncodeFrame(frame)); err != nil {
			if s.closingOrIdle() {
				return
			}
			s.log.Error().Err(err).Msg("send frame failed")
			go s.stop(StatusFailure)
			return
		}
	}
}

// pumpDownload is the receive → decode → schedule direction. An
// interruption discards everything scheduled so the model can barge in
// over itself.
func (s *Session) pumpDownload(conn Transport) {
	defer s.wg.Done()
	for {
		ev, err := conn.Read()
		if err != nil {
			if s.closingOrIdle() {
				return
			}
			status := StatusFailure
			if errors.Is(err, io.EOF) {
				status = StatusOffline
			} else {
				s.log.Error().Err(err).Msg("voice link read failed")
			}
			go s.stop(status)
			return
		}
		if ev.Audio != "" {
			buf, err := DecodeFrame(ev.Audio, OutputRate)
			if err != nil {
				s.log.Warn().Err(err).Msg("dropping undecodable chunk")
			} else {
				s.sched.Schedule(buf)
			}
		}
		if ev.Interrupted {
			s.sched.Flush()
		}
	}
}

func (s *Session) closingOrIdle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateClosing || s.state == StateIdle
}
