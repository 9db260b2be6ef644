package system

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zetteln/server/o11y"
	"github.com/zetteln/server/termination"
)

// HealthChecker is implemented by anything the admin server should probe.
// Either func may be nil.
type HealthChecker interface {
	HealthChecks() (name string, ready, live func(ctx context.Context) error)
}

type System struct {
	services     []func(context.Context) error
	healthChecks []HealthChecker
	gauges       []GaugeProducer
	cleanups     []func(ctx context.Context) error
}

func New() *System {
	return &System{}
}

var terminationHook = termination.Handle

// Run starts every service and blocks until one of them fails, or the process
// is terminated, which returns termination.ErrTerminated.
func (r *System) Run(ctx context.Context, delay time.Duration) (err error) {
	ctx, span := o11y.StartSpan(ctx, "system: run")
	defer o11y.End(span, &err)
	span.RecordMetric(o11y.Timing("system.run", "result"))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return terminationHook(ctx, delay)
	})

	for _, f := range r.services {
		f := f
		g.Go(func() error {
			return f(ctx)
		})
	}

	if len(r.gauges) > 0 {
		g.Go(gaugeReporter(ctx, r.gauges))
	}

	return g.Wait()
}

func (r *System) AddService(s func(ctx context.Context) error) {
	r.services = append(r.services, s)
}

func (r *System) AddHealthCheck(h HealthChecker) {
	r.healthChecks = append(r.healthChecks, h)
}

func (r *System) AddGauges(g GaugeProducer) {
	r.gauges = append(r.gauges, g)
}

func (r *System) AddCleanup(c func(ctx context.Context) error) {
	r.cleanups = append(r.cleanups, c)
}

func (r *System) HealthChecks() []HealthChecker {
	return r.healthChecks
}

// Cleanup runs every cleanup, logging rather than returning failures.
func (r *System) Cleanup(ctx context.Context) {
	for _, c := range r.cleanups {
		if err := c(ctx); err != nil {
			o11y.LogError(ctx, "system: cleanup error", err)
		}
	}
}
