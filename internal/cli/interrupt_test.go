package cli

import (
	"bytes"
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer provides thread-safe access to a bytes.Buffer.
type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (s *syncBuffer) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

// fakeSignals captures the channel the handler registers.
func fakeSignals(h *InterruptHandler) chan chan<- os.Signal {
	registered := make(chan chan<- os.Signal, 1)
	h.notify = func(c chan<- os.Signal, _ ...os.Signal) { registered <- c }
	h.stop = func(chan<- os.Signal) {}
	return registered
}

func TestHandleInterrupts_SignalCancels(t *testing.T) {
	output := &syncBuffer{}
	handler := NewInterruptHandler(output)
	registered := fakeSignals(handler)

	ctx, stop := handler.HandleInterrupts(context.Background())
	defer stop()

	select {
	case <-ctx.Done():
		t.Fatal("context canceled before any signal")
	default:
	}

	(<-registered) <- os.Interrupt

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not canceled after interrupt")
	}

	require.Eventually(t, handler.WasInterrupted, time.Second, 10*time.Millisecond)
	assert.Contains(t, output.String(), "Run interrupted")
	assert.Contains(t, output.String(), "next run")
}

func TestHandleInterrupts_StopWithoutSignal(t *testing.T) {
	output := &syncBuffer{}
	handler := NewInterruptHandler(output)
	_ = fakeSignals(handler)

	ctx, stop := handler.HandleInterrupts(context.Background())
	stop()
	stop()

	<-ctx.Done()
	assert.False(t, handler.WasInterrupted())
	assert.Empty(t, output.String())
}

func TestNewInterruptHandler_DefaultsToStderr(t *testing.T) {
	handler := NewInterruptHandler(nil)
	assert.Equal(t, os.Stderr, handler.writer)
}
