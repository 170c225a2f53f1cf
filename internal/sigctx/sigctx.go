// Package sigctx ties a context's lifetime to process shutdown signals.
package sigctx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// ErrSignal is the cancellation cause when a watched signal arrives.
var ErrSignal = errors.New("shutdown signal")

// Shutdown lists the signals that stop the server.
var Shutdown = []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT}

// WithShutdown returns a copy of parent cancelled on the first of sigs,
// or of Shutdown when sigs is empty. context.Cause names the signal.
// stop releases the signal handler and cancels the context.
func WithShutdown(parent context.Context, sigs ...os.Signal) (ctx context.Context, stop context.CancelFunc) {
	if len(sigs) == 0 {
		sigs = Shutdown
	}
	ctx, cancel := context.WithCancelCause(parent)
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)

	go func() {
		select {
		case sig := <-ch:
			cancel(fmt.Errorf("%w: %s", ErrSignal, sig))
		case <-ctx.Done():
		}
		signal.Stop(ch)
	}()

	return ctx, func() {
		signal.Stop(ch)
		cancel(context.Canceled)
	}
}
