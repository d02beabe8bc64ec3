// Package voice implements the bidirectional streaming voice link: PCM
// transport codec, gap-free playback scheduling and the session state
// machine tying capture, transport and playback together.
package voice

import (
	"encoding/base64"
	"fmt"
	"time"
)

// Wire format: little-endian signed 16-bit PCM, base64 on the JSON frame.
// Upstream runs at 16 kHz mono, downstream at 24 kHz mono.
const (
	InputRate  = 16000
	OutputRate = 24000
)

// EncodeFrame converts float32 samples in [-1,1] to the transport
// encoding. Out-of-range samples are clamped.
func EncodeFrame(samples []float32) string {
	return base64.StdEncoding.EncodeToString(pcmFromFloat32(samples))
}

// DecodeFrame converts a transport-encoded chunk into a playable buffer at
// the given sample rate.
func DecodeFrame(data string, sampleRate int) (Buffer, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return Buffer{}, fmt.Errorf("decode audio chunk: %w", err)
	}
	return Buffer{Samples: float32FromPCM(raw), SampleRate: sampleRate}, nil
}

// Buffer is a decoded chunk of mono audio.
type Buffer struct {
	Samples    []float32
	SampleRate int
}

func (b Buffer) Len() int { return len(b.Samples) }

func (b Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(b.Samples)) / float64(b.SampleRate) * float64(time.Second))
}

func pcmFromFloat32(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := int32(s * 32768)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out
}

func float32FromPCM(data []byte) []float32 {
	n := len(data) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v := int16(uint16(data[i*2]) | uint16(data[i*2+1])<<8)
		out[i] = float32(v) / 32768
	}
	return out
}
