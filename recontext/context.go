// Package recontext derives contexts that keep the parent's values, such as the
// o11y provider, but not its cancellation. Shutdown and cleanup work uses them
// once the context it was started from is already done.
package recontext

import (
	"context"
	"time"
)

// valuesOnly hides the parent's deadline and cancellation. It is only ever
// handed out wrapped in a context with its own timeout, so nothing can hang on it.
type valuesOnly struct{ context.Context }

func (valuesOnly) Deadline() (deadline time.Time, ok bool) { return time.Time{}, false }
func (valuesOnly) Done() <-chan struct{}                   { return nil }
func (valuesOnly) Err() error                              { return nil }

// WithNewTimeout returns a context carrying parent's values with a fresh timeout.
func WithNewTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(valuesOnly{parent}, timeout)
}
