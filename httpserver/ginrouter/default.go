// Package ginrouter builds gin engines with the service's standard middleware.
package ginrouter

import (
	"context"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/zetteln/server/httpserver"
	"github.com/zetteln/server/o11y"
	"github.com/zetteln/server/o11y/wrappers/o11ygin"
)

var once sync.Once

// Default returns an engine that traces every request with the provider in ctx,
// recovers panics, and reports client cancellation as 499.
func Default(ctx context.Context, serverName string) *gin.Engine {
	once.Do(func() {
		gin.SetMode(gin.ReleaseMode)
	})

	r := gin.New()
	r.Use(
		o11ygin.Middleware(o11y.FromContext(ctx), serverName),
		o11ygin.Recovery(),
		o11ygin.ClientCancelled(),
		httpserver.HandleClientCancel,
	)
	r.UseRawPath = true

	return r
}
