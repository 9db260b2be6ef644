package worker

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/zetteln/server/o11y"
)

// ErrShouldBackoff is returned by a WorkFunc that found nothing to do.
var ErrShouldBackoff = errors.New("should back off")

type Config struct {
	Name          string
	NoWorkBackOff backoff.BackOff
	// MaxWorkTime bounds each call to WorkFunc, defaults to 10s.
	MaxWorkTime time.Duration
	// WorkFunc should return ErrShouldBackoff if it wants the loop to begin backing off
	WorkFunc func(ctx context.Context) error

	waiter func(ctx context.Context, delay time.Duration)
}

// Run calls WorkFunc in a loop until ctx is cancelled.
func Run(ctx context.Context, cfg Config) {
	cfg = setDefaults(cfg)
	cfg.NoWorkBackOff.Reset()
	provider := o11y.FromContext(ctx)

	for ctx.Err() == nil {
		delay := doWork(provider, cfg)
		if delay < 0 {
			cfg.NoWorkBackOff.Reset()
			continue
		}
		cfg.waiter(ctx, delay)
	}
}

func setDefaults(cfg Config) Config {
	if cfg.waiter == nil {
		cfg.waiter = wait
	}
	if cfg.NoWorkBackOff == nil {
		cfg.NoWorkBackOff = defaultBackOff()
	}
	if cfg.MaxWorkTime <= 0 {
		cfg.MaxWorkTime = 10 * time.Second
	}
	return cfg
}

func wait(ctx context.Context, delay time.Duration) {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// doWork returns the delay before the next call, negative when there should be none.
func doWork(provider o11y.Provider, cfg Config) (delay time.Duration) {
	// A fresh context so one slow call cannot eat into the next, and shutdown
	// lets in-flight work finish within MaxWorkTime.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.MaxWorkTime)
	defer cancel()

	ctx = o11y.WithProvider(ctx, provider)
	ctx, span := provider.StartSpan(ctx, "worker loop: "+cfg.Name)
	span.AddField("loop_name", cfg.Name)
	span.RecordMetric(o11y.Timing("worker_loop", "loop_name", "result"))
	var err error
	defer o11y.End(span, &err)

	defer func() {
		if r := recover(); r != nil {
			err = o11y.HandlePanic(ctx, span, r, nil)
		}
	}()

	delay = -1
	err = cfg.WorkFunc(ctx)
	if errors.Is(err, ErrShouldBackoff) {
		delay = cfg.NoWorkBackOff.NextBackOff()
		err = nil
	}

	span.AddField("backoff_ms", delay.Milliseconds())
	return delay
}
