package voice

import (
	"sync"
	"time"
)

// Scheduler queues decoded chunks for seamless playback. The clock is the
// number of samples rendered so far; each new chunk starts at the later of
// "now" and the end of the previously scheduled chunk, so a stream that
// arrives in discrete pieces plays back as one continuous take.
//
// The speaker pulls rendered blocks through Read; the download pump pushes
// chunks through Schedule. Those are the only two touch points.
type Scheduler struct {
	mu    sync.Mutex
	rate  int
	pos   int64 // samples rendered so far (the playback clock)
	next  int64 // next free start position
	queue []scheduledChunk
}

type scheduledChunk struct {
	start   int64
	samples []float32
}

func NewScheduler(rate int) *Scheduler {
	return &Scheduler{rate: rate}
}

// Schedule queues the buffer and returns its start offset on the playback
// clock.
func (s *Scheduler) Schedule(buf Buffer) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.pos
	if s.next > start {
		start = s.next
	}
	s.queue = append(s.queue, scheduledChunk{start: start, samples: buf.Samples})
	s.next = start + int64(len(buf.Samples))
	return s.samplesToDuration(start)
}

// Flush discards everything queued or playing and resets the schedule, so
// the next chunk starts immediately. Used on barge-in.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = nil
	s.next = 0
}

// Read renders the next block of playback into out, advancing the clock by
// len(out) samples. Unscheduled regions come out as silence.
func (s *Scheduler) Read(out []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range out {
		out[i] = 0
	}

	blockStart := s.pos
	blockEnd := blockStart + int64(len(out))
	remaining := s.queue[:0]
	for _, c := range s.queue {
		end := c.start + int64(len(c.samples))
		if end <= blockStart {
			continue // fully played, drop
		}
		from := blockStart
		if c.start > from {
			from = c.start
		}
		for p := from; p < blockEnd && p < end; p++ {
			out[p-blockStart] += c.samples[p-c.start]
		}
		remaining = append(remaining, c)
	}
	s.queue = remaining
	s.pos = blockEnd
}

// Pending reports how many chunks are queued or still playing.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Clock returns the current playback position.
func (s *Scheduler) Clock() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.samplesToDuration(s.pos)
}

func (s *Scheduler) samplesToDuration(n int64) time.Duration {
	return time.Duration(float64(n) / float64(s.rate) * float64(time.Second))
}
