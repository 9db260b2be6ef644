// Package termination turns SIGINT and SIGTERM into an error for a service's errgroup.
package termination

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zetteln/server/o11y"
)

// ErrTerminated is returned once a termination signal has been handled.
var ErrTerminated = errors.New("terminated")

// Handle blocks until the process is signalled or ctx is done. After a signal it
// waits for delay, so load balancers can stop routing to us, then returns ErrTerminated.
func Handle(ctx context.Context, delay time.Duration) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)
	return handle(ctx, delay, quit)
}

func handle(ctx context.Context, delay time.Duration, quit <-chan os.Signal) error {
	select {
	case sig := <-quit:
		o11y.Log(ctx, "termination: signal received",
			o11y.Field("signal", sig.String()),
			o11y.Field("delay", delay.String()),
		)
	case <-ctx.Done():
		return nil
	}

	select {
	case <-time.After(delay):
	case <-ctx.Done():
	}
	return ErrTerminated
}
