package testcontext

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/zetteln/server/o11y"
)

func TestBackground_MetricsProvider(t *testing.T) {
	metrics := o11y.FromContext(Background()).MetricsProvider()
	assert.Assert(t, metrics.Gauge("gauge", 1, nil, 1))
}

func TestBackground_Spans(t *testing.T) {
	ctx, span := o11y.StartSpan(Background(), "testcontext")
	span.AddField("note_id", "demo-1")
	o11y.AddField(ctx, "seeded", true)
	span.End()
}
