package o11y

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rollbar/rollbar-go"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"
	"gotest.tools/v3/poll"

	"github.com/zetteln/server/config/secret"
	"github.com/zetteln/server/o11y"
	"github.com/zetteln/server/testing/fakestatsd"
)

func TestSetup_SecretRedacted(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx, cleanup, err := Setup(context.Background(), Config{
		Format:  "json",
		Service: "zetteln",
		Writer:  buf,
	})
	assert.Assert(t, err)

	_, span := o11y.StartSpan(ctx, "secret test")
	span.AddField("password", secret.String("super-secret"))
	span.End()
	cleanup(ctx)

	assert.Check(t, !strings.Contains(buf.String(), "super-secret"), buf.String())
	assert.Check(t, cmp.Contains(buf.String(), "REDACTED"))
	assert.Check(t, cmp.Contains(buf.String(), `"service":"zetteln"`))
}

func TestSetup_SendsMetricsToStatsd(t *testing.T) {
	s := fakestatsd.New(t)

	ctx, cleanup, err := Setup(context.Background(), Config{
		Statsd:                  s.Addr(),
		StatsNamespace:          "zetteln.",
		StatsdTelemetryDisabled: true,
		Format:                  "none",
		Service:                 "zetteln",
		Version:                 "1.2.3",
	})
	assert.Assert(t, err)

	_, span := o11y.StartSpan(ctx, "metric test")
	span.RecordMetric(o11y.Incr("bootstrap_runs"))
	span.End()
	cleanup(ctx)

	poll.WaitOn(t, func(t poll.LogT) poll.Result {
		for _, m := range s.Metrics() {
			if m.Name == "zetteln.bootstrap_runs" {
				return poll.Success()
			}
		}
		return poll.Continue("metric not received yet: %v", s.Metrics())
	}, poll.WithTimeout(5*time.Second))

	for _, m := range s.Metrics() {
		if m.Name == "zetteln.bootstrap_runs" {
			assert.Check(t, cmp.Contains(m.Tags, "service:zetteln"))
			assert.Check(t, cmp.Contains(m.Tags, "version:1.2.3"))
		}
	}
}

func TestSetup_Rollbar(t *testing.T) {
	ctx, cleanup, err := Setup(context.Background(), Config{
		RollbarToken:    "qwertyuiop",
		RollbarDisabled: true,
		RollbarEnv:      "test",
		Format:          "none",
		Service:         "zetteln",
	})
	assert.Assert(t, err)
	defer cleanup(ctx)

	_, ok := o11y.FromContext(ctx).(interface{ RollBarClient() *rollbar.Client })
	assert.Check(t, ok)
}

func TestSetup_HoneycombNeedsKey(t *testing.T) {
	_, _, err := Setup(context.Background(), Config{
		HoneycombEnabled: true,
		HoneycombDataset: "zetteln",
	})
	assert.Check(t, cmp.ErrorContains(err, "honeycomb_key"))
}

func TestDefaultSampleKey(t *testing.T) {
	key := DefaultSampleKey(map[string]interface{}{
		"http.server_name": "admin",
		"http.route":       "/ready",
		"http.status_code": 200,
	})
	assert.Check(t, cmp.Equal(key, "admin /ready 200"))
}
