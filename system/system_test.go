package system

import (
	"context"
	"errors"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"
	"gotest.tools/v3/poll"

	"github.com/zetteln/server/o11y"
	"github.com/zetteln/server/termination"
	"github.com/zetteln/server/testing/fakemetrics"
	"github.com/zetteln/server/testing/testcontext"
)

type metricsProvider struct {
	o11y.Provider
	metrics o11y.MetricsProvider
}

func (p metricsProvider) MetricsProvider() o11y.MetricsProvider {
	return p.metrics
}

func TestSystem_Run(t *testing.T) {
	metrics := &fakemetrics.Provider{}
	ctx := testcontext.Background()
	ctx = o11y.WithProvider(ctx, metricsProvider{Provider: o11y.FromContext(ctx), metrics: metrics})

	serviceStarted := make(chan struct{})
	terminationHook = func(ctx context.Context, _ time.Duration) error {
		<-serviceStarted
		poll.WaitOn(t, func(poll.LogT) poll.Result {
			if len(metrics.Calls()) < 2 {
				return poll.Continue("waiting for gauges")
			}
			return poll.Success()
		})
		return termination.ErrTerminated
	}
	t.Cleanup(func() { terminationHook = termination.Handle })

	sys := New()
	sys.AddGauges(fakeGauges{})
	sys.AddService(func(ctx context.Context) (err error) {
		_, span := o11y.StartSpan(ctx, "service")
		defer o11y.End(span, &err)
		close(serviceStarted)
		<-ctx.Done()
		return nil
	})
	sys.AddHealthCheck(fakeHealthChecker{})

	var cleanups []string
	sys.AddCleanup(func(ctx context.Context) error {
		cleanups = append(cleanups, "pool")
		return errors.New("close failed")
	})
	sys.AddCleanup(func(ctx context.Context) error {
		cleanups = append(cleanups, "o11y")
		return nil
	})

	err := sys.Run(ctx, 0)
	assert.Check(t, cmp.ErrorIs(err, termination.ErrTerminated))
	assert.Check(t, cmp.Len(sys.HealthChecks(), 1))

	sys.Cleanup(ctx)
	assert.Check(t, cmp.DeepEqual(cleanups, []string{"pool", "o11y"}))

	assert.Check(t, cmp.DeepEqual(metrics.Calls()[:2], []fakemetrics.MetricCall{
		{Metric: "gauge", Name: "gauge.db_pool.open_connections", Value: 3, Tags: []string{"db:zetteln"}, Rate: 1},
		{Metric: "gauge", Name: "gauge.db_pool.open_connections", Value: 1, Tags: []string{"db:admin"}, Rate: 1},
	}, fakemetrics.CMPMetrics))
}

func TestSystem_RunStopsOnServiceError(t *testing.T) {
	terminationHook = func(ctx context.Context, _ time.Duration) error {
		<-ctx.Done()
		return nil
	}
	t.Cleanup(func() { terminationHook = termination.Handle })

	errListen := errors.New("listen failed")
	sys := New()
	sys.AddService(func(ctx context.Context) error {
		return errListen
	})
	sys.AddService(func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})

	err := sys.Run(testcontext.Background(), 0)
	assert.Check(t, cmp.ErrorIs(err, errListen))
}

type fakeGauges struct{}

func (fakeGauges) GaugeName() string {
	return "db-pool"
}

func (fakeGauges) Gauges(context.Context) map[string][]TaggedValue {
	return map[string][]TaggedValue{
		"open_connections": {
			{Val: 3, Tags: []string{"db:zetteln"}},
			{Val: 1, Tags: []string{"db:admin"}},
		},
	}
}

type fakeHealthChecker struct{}

func (fakeHealthChecker) HealthChecks() (string, func(context.Context) error, func(context.Context) error) {
	return "fake", nil, nil
}
