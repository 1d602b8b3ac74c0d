package lifecycle_test

import (
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/catalyst/pkg/lifecycle"
)

type closer struct {
	closed atomic.Bool
	err    error
}

func (c *closer) Close() error {
	c.closed.Store(true)
	return c.err
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStartupReadiness(t *testing.T) {
	lc := lifecycle.New()
	release := make(chan struct{})
	lc.OnStartup(func() { <-release })

	if lc.Ready() {
		t.Fatal("ready before startup hooks finished")
	}

	close(release)
	lc.WaitForStartup()

	if !lc.Ready() {
		t.Error("not ready after WaitForStartup")
	}
}

func TestCloseOnShutdown(t *testing.T) {
	lc := lifecycle.New()
	ok := &closer{}
	failing := &closer{err: errors.New("boom")}

	lc.CloseOnShutdown("store", ok, discard())
	lc.CloseOnShutdown("cache", failing, discard())

	if ok.closed.Load() {
		t.Fatal("closed before shutdown")
	}

	if err := lc.Shutdown(time.Second); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if !ok.closed.Load() || !failing.closed.Load() {
		t.Error("closers not invoked")
	}
	if lc.Context().Err() == nil {
		t.Error("context not cancelled")
	}
}

func TestShutdownTimeout(t *testing.T) {
	lc := lifecycle.New()
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	lc.OnShutdown(func() { <-block })

	err := lc.Shutdown(10 * time.Millisecond)
	if !errors.Is(err, lifecycle.ErrShutdownTimeout) {
		t.Errorf("Shutdown error = %v, want ErrShutdownTimeout", err)
	}
}
