package voice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func chunk(n int) Buffer {
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = 0.5
	}
	return Buffer{Samples: samples, SampleRate: OutputRate}
}

func TestScheduleGapFree(t *testing.T) {
	// Chunks arriving in order start back-to-back: chunk k+1 begins exactly
	// at the summed durations of chunks 1..k.
	s := NewScheduler(OutputRate)

	d1 := s.Schedule(chunk(2400)) // 100ms
	d2 := s.Schedule(chunk(4800)) // 200ms
	d3 := s.Schedule(chunk(1200)) // 50ms

	require.Equal(t, time.Duration(0), d1)
	require.Equal(t, 100*time.Millisecond, d2)
	require.Equal(t, 300*time.Millisecond, d3)
}

func TestScheduleNeverStartsInThePast(t *testing.T) {
	s := NewScheduler(OutputRate)
	s.Schedule(chunk(240)) // 10ms

	// Playback advances past the end of the first chunk.
	out := make([]float32, 480) // 20ms rendered
	s.Read(out)

	// The late-arriving chunk starts at "now", not at the old nextStart.
	start := s.Schedule(chunk(240))
	require.Equal(t, 20*time.Millisecond, start)
}

func TestFlushResetsSchedule(t *testing.T) {
	s := NewScheduler(OutputRate)
	s.Schedule(chunk(24000))
	s.Schedule(chunk(24000))
	require.Equal(t, 2, s.Pending())

	out := make([]float32, 2400)
	s.Read(out)

	s.Flush()
	require.Equal(t, 0, s.Pending())

	// After an interruption the next chunk starts at the current position,
	// not at the stale two-second mark.
	start := s.Schedule(chunk(2400))
	require.Equal(t, s.Clock(), start)
}

func TestReadRendersScheduledSamples(t *testing.T) {
	s := NewScheduler(OutputRate)
	buf := Buffer{Samples: []float32{0.1, 0.2, 0.3, 0.4}, SampleRate: OutputRate}
	s.Schedule(buf)

	out := make([]float32, 3)
	s.Read(out)
	require.InDeltaSlice(t, []float32{0.1, 0.2, 0.3}, out, 1e-6)

	s.Read(out)
	require.InDeltaSlice(t, []float32{0.4, 0, 0}, out, 1e-6, "tail then silence")
	require.Equal(t, 0, s.Pending(), "fully played chunks are dropped")
}

func TestReadSilenceBeforeScheduledStart(t *testing.T) {
	s := NewScheduler(OutputRate)

	// Consume one block first so the next chunk starts at sample 4.
	out := make([]float32, 4)
	s.Read(out)
	s.Schedule(Buffer{Samples: []float32{0.9, 0.9}, SampleRate: OutputRate})

	s.Read(out)
	require.InDeltaSlice(t, []float32{0.9, 0.9, 0, 0}, out, 1e-6)
}

func TestBufferDuration(t *testing.T) {
	require.Equal(t, time.Second, chunk(OutputRate).Duration())
	require.Equal(t, 500*time.Millisecond, chunk(OutputRate/2).Duration())
	require.Equal(t, time.Duration(0), Buffer{}.Duration())
}
