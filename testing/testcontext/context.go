// Package testcontext gives tests a context carrying a real o11y provider, so
// spans are printed in the test output.
package testcontext

import (
	"context"

	"github.com/zetteln/server/config/o11y"
)

// ctx is built once at package init since beeline keeps global state.
var ctx = newContext()

// Background returns a context for use in tests which contains a working o11y, so you get logs.
func Background() context.Context {
	return ctx
}

func newContext() context.Context {
	cx, _, err := o11y.Setup(context.Background(), o11y.Config{
		Service: "zetteln-test",
		Version: "test",
		Format:  "text",
	})
	if err != nil {
		panic(err)
	}
	return cx
}
