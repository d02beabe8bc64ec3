package voice

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// --- fakes -----------------------------------------------------------------

type scriptItem struct {
	ev  ServerEvent
	err error
}

type fakeTransport struct {
	mu     sync.Mutex
	sent   []string
	script chan scriptItem
	closed chan struct{}
	once   sync.Once
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		script: make(chan scriptItem, 16),
		closed: make(chan struct{}),
	}
}

func (f *fakeTransport) SendAudio(data string) error {
	select {
	case <-f.closed:
		return errors.New("transport closed")
	default:
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, data)
	return nil
}

func (f *fakeTransport) Read() (ServerEvent, error) {
	select {
	case it := <-f.script:
		return it.ev, it.err
	case <-f.closed:
		return ServerEvent{}, io.EOF
	}
}

func (f *fakeTransport) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeTransport) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeTransport) sentAt(i int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[i]
}

type fakeCapture struct {
	mu       sync.Mutex
	frames   chan []float32
	started  bool
	startErr error
}

func (c *fakeCapture) Start() error {
	if c.startErr != nil {
		return c.startErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = make(chan []float32, 16)
	c.started = true
	return nil
}

func (c *fakeCapture) Frames() <-chan []float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}

func (c *fakeCapture) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		c.started = false
		close(c.frames)
	}
	return nil
}

func (c *fakeCapture) push(frame []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		c.frames <- frame
	}
}

type fakePlayer struct {
	mu      sync.Mutex
	started bool
	stops   int
}

func (p *fakePlayer) Start(func(out []float32)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started = true
	return nil
}

func (p *fakePlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started = false
	p.stops++
	return nil
}

func newTestSession(t *testing.T) (*Session, *fakeTransport, *fakeCapture, *fakePlayer) {
	t.Helper()
	transport := newFakeTransport()
	mic := &fakeCapture{}
	player := &fakePlayer{}
	dial := func(context.Context) (Transport, error) { return transport, nil }
	sess := NewSession(dial, mic, player, zerolog.Nop())
	t.Cleanup(func() { _ = sess.Stop() })
	return sess, transport, mic, player
}

// --- tests -----------------------------------------------------------------

func TestSessionStartStop(t *testing.T) {
	sess, _, _, player := newTestSession(t)
	require.Equal(t, StateIdle, sess.State())
	require.Equal(t, StatusReady, sess.Status())

	require.NoError(t, sess.Start(context.Background()))
	require.Equal(t, StateActive, sess.State())
	require.Equal(t, StatusEstablished, sess.Status())

	require.NoError(t, sess.Stop())
	require.Equal(t, StateIdle, sess.State())
	require.Equal(t, StatusOffline, sess.Status())
	require.Equal(t, 1, player.stops, "playback released together with the link")
}

func TestSessionStopIdempotent(t *testing.T) {
	sess, _, _, _ := newTestSession(t)
	require.NoError(t, sess.Stop(), "stopping an idle session is a no-op")

	require.NoError(t, sess.Start(context.Background()))
	require.NoError(t, sess.Stop())
	require.NoError(t, sess.Stop())
	require.Equal(t, StateIdle, sess.State())
}

func TestSessionStartWhileActive(t *testing.T) {
	sess, _, _, _ := newTestSession(t)
	require.NoError(t, sess.Start(context.Background()))
	require.ErrorIs(t, sess.Start(context.Background()), ErrSessionActive)
}

func TestSessionMicDeniedStaysIdle(t *testing.T) {
	transport := newFakeTransport()
	mic := &fakeCapture{startErr: errors.New("permission denied")}
	dialed := false
	dial := func(context.Context) (Transport, error) { dialed = true; return transport, nil }
	sess := NewSession(dial, mic, &fakePlayer{}, zerolog.Nop())

	err := sess.Start(context.Background())
	require.Error(t, err)
	require.Equal(t, StateIdle, sess.State())
	require.Equal(t, StatusFailure, sess.Status())
	require.False(t, dialed, "no connection attempt without a microphone")
}

func TestSessionDialFailureReleasesMic(t *testing.T) {
	mic := &fakeCapture{}
	dial := func(context.Context) (Transport, error) { return nil, errors.New("network down") }
	sess := NewSession(dial, mic, &fakePlayer{}, zerolog.Nop())

	require.Error(t, sess.Start(context.Background()))
	require.Equal(t, StateIdle, sess.State())
	require.Equal(t, StatusFailure, sess.Status())
	mic.mu.Lock()
	defer mic.mu.Unlock()
	require.False(t, mic.started, "microphone released on dial failure")
}

func TestSessionUploadsEncodedFrames(t *testing.T) {
	sess, transport, mic, _ := newTestSession(t)
	require.NoError(t, sess.Start(context.Background()))

	mic.push([]float32{0.5, -0.5})
	require.Eventually(t, func() bool { return transport.sentCount() == 1 }, time.Second, time.Millisecond)

	buf, err := DecodeFrame(transport.sentAt(0), InputRate)
	require.NoError(t, err)
	require.Len(t, buf.Samples, 2)
	require.InDelta(t, 0.5, buf.Samples[0], 1.0/32768)
	require.InDelta(t, -0.5, buf.Samples[1], 1.0/32768)
}

func TestSessionSchedulesInboundAudio(t *testing.T) {
	sess, transport, _, _ := newTestSession(t)
	require.NoError(t, sess.Start(context.Background()))

	transport.script <- scriptItem{ev: ServerEvent{Audio: EncodeFrame(make([]float32, 2400))}}
	require.Eventually(t, func() bool { return sess.Scheduler().Pending() == 1 }, time.Second, time.Millisecond)
}

func TestSessionInterruptionFlushesPlayback(t *testing.T) {
	sess, transport, _, _ := newTestSession(t)
	require.NoError(t, sess.Start(context.Background()))

	transport.script <- scriptItem{ev: ServerEvent{Audio: EncodeFrame(make([]float32, 2400))}}
	require.Eventually(t, func() bool { return sess.Scheduler().Pending() == 1 }, time.Second, time.Millisecond)

	transport.script <- scriptItem{ev: ServerEvent{Interrupted: true}}
	require.Eventually(t, func() bool { return sess.Scheduler().Pending() == 0 }, time.Second, time.Millisecond)
}

func TestSessionRemoteCloseTearsDown(t *testing.T) {
	sess, transport, _, _ := newTestSession(t)
	require.NoError(t, sess.Start(context.Background()))

	transport.script <- scriptItem{err: io.EOF}
	require.Eventually(t, func() bool { return sess.State() == StateIdle }, time.Second, time.Millisecond)
	require.Equal(t, StatusOffline, sess.Status())
}

func TestSessionTransportErrorTearsDown(t *testing.T) {
	sess, transport, _, _ := newTestSession(t)
	require.NoError(t, sess.Start(context.Background()))

	transport.script <- scriptItem{err: errors.New("link reset")}
	require.Eventually(t, func() bool { return sess.State() == StateIdle }, time.Second, time.Millisecond)
	require.Equal(t, StatusFailure, sess.Status())
}
