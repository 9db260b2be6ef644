package system

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/zetteln/server/o11y"
	"github.com/zetteln/server/worker"
)

type GaugeProducer interface {
	// GaugeName is the prefix for this group of gauges, eg. "db_pool"
	GaugeName() string
	// Gauges are instantaneous values, each optionally tagged
	Gauges(context.Context) map[string][]TaggedValue
}

type TaggedValue struct {
	Val  float64
	Tags []string
}

var gaugeInterval = 10 * time.Second

func emitGauges(ctx context.Context, producers []GaugeProducer) {
	metrics := o11y.FromContext(ctx).MetricsProvider()
	for _, producer := range producers {
		prefix := strings.ReplaceAll(producer.GaugeName(), "-", "_")
		for name, values := range producer.Gauges(ctx) {
			for _, v := range values {
				_ = metrics.Gauge(fmt.Sprintf("gauge.%s.%s", prefix, name), v.Val, v.Tags, 1)
			}
		}
	}
}

// gaugeReporter publishes every producer's gauges once per interval until ctx is done.
func gaugeReporter(ctx context.Context, producers []GaugeProducer) func() error {
	return func() error {
		worker.Run(ctx, worker.Config{
			Name:          "gauge-loop",
			MaxWorkTime:   time.Second,
			NoWorkBackOff: backoff.NewConstantBackOff(gaugeInterval),
			WorkFunc: func(ctx context.Context) error {
				emitGauges(ctx, producers)
				return worker.ErrShouldBackoff
			},
		})
		return nil
	}
}
