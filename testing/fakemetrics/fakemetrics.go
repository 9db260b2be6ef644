// Package fakemetrics records metric calls in memory so tests can assert on them.
package fakemetrics

import (
	"fmt"
	"sync"

	gocmp "github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

type MetricCall struct {
	Metric   string
	Name     string
	Value    float64
	ValueInt int64
	Tags     []string
	Rate     float64
}

// CMPMetrics compares calls regardless of order, with timers allowed to drift.
var CMPMetrics = gocmp.Options{
	cmpopts.EquateApprox(0, 10),
	cmpopts.SortSlices(func(x, y MetricCall) bool {
		return fmt.Sprintf("%s|%s|%s", x.Metric, x.Name, x.Tags) <
			fmt.Sprintf("%s|%s|%s", y.Metric, y.Name, y.Tags)
	}),
}

// Provider implements o11y.ClosableMetricsProvider.
type Provider struct {
	mu     sync.RWMutex
	calls  []MetricCall
	closed bool
}

func (f *Provider) Calls() []MetricCall {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]MetricCall(nil), f.calls...)
}

func (f *Provider) record(c MetricCall) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return nil
}

func (f *Provider) TimeInMilliseconds(name string, value float64, tags []string, rate float64) error {
	return f.record(MetricCall{Metric: "timer", Name: name, Value: value, Tags: tags, Rate: rate})
}

func (f *Provider) Gauge(name string, value float64, tags []string, rate float64) error {
	return f.record(MetricCall{Metric: "gauge", Name: name, Value: value, Tags: tags, Rate: rate})
}

func (f *Provider) Count(name string, value int64, tags []string, rate float64) error {
	return f.record(MetricCall{Metric: "count", Name: name, ValueInt: value, Tags: tags, Rate: rate})
}

func (f *Provider) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *Provider) Closed() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.closed
}
