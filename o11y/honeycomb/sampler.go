package honeycomb

import (
	"fmt"
	"hash/crc32"
	"math"

	"github.com/honeycombio/dynsampler-go"
)

// TraceSampler drops a deterministic share of traces per sampling key.
type TraceSampler struct {
	// KeyFunc maps a span's fields to the key used to look up its sample rate.
	KeyFunc func(map[string]interface{}) string

	Sampler dynsampler.Sampler
}

// Hook implements beeline.Config.SamplerHook
func (s *TraceSampler) Hook(fields map[string]interface{}) (sample bool, rate int) {
	if keep, ok := fields["meta.keep.span"].(bool); ok && keep {
		return true, 1
	}

	rate = s.Sampler.GetSampleRate(s.KeyFunc(fields))
	if shouldSample(fmt.Sprint(fields["trace.trace_id"]), rate) {
		return true, rate
	}
	return false, 0
}

// shouldSample hashes the trace id so every span of a trace gets the same decision.
//
// See https://github.com/honeycombio/beeline-go/blob/master/sample/deterministic_sampler.go
func shouldSample(determinant string, rate int) bool {
	if rate <= 1 {
		return true
	}

	threshold := math.MaxUint32 / uint32(rate) //nolint:gosec
	return crc32.ChecksumIEEE([]byte(determinant)) < threshold
}
