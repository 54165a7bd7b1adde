package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kobex777/anymaps/pkg/canvas"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func quietSpinner(ctx context.Context, msg string) (*Spinner, *syncBuffer) {
	s := newSpinnerWithContext(ctx, msg)
	out := &syncBuffer{}
	s.out = out
	return s, out
}

func TestSpinnerBasic(t *testing.T) {
	s, out := quietSpinner(context.Background(), "Testing...")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if !strings.Contains(out.String(), "Testing...") {
		t.Errorf("spinner output %q lacks message", out.String())
	}
	if s.Cancelled() != true {
		t.Error("Stop should cancel the spinner context")
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s, _ := quietSpinner(ctx, "Testing with context...")
	s.Start()
	cancel()
	time.Sleep(100 * time.Millisecond)
	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s, _ := quietSpinner(context.Background(), "Testing idempotent stop...")
	s.Start()
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerOnStatus(t *testing.T) {
	s, out := quietSpinner(context.Background(), "Starting...")
	s.Start()
	s.OnStatus(canvas.StatusPlanning)
	time.Sleep(200 * time.Millisecond)
	s.OnStatus(canvas.StatusReady) // no message for ready
	s.Stop()

	if !strings.Contains(out.String(), "Planning topics...") {
		t.Errorf("spinner output %q lacks status message", out.String())
	}
	if s.message != "Planning topics..." {
		t.Errorf("message = %q, want unchanged by ready", s.message)
	}
}
