package healthcheck

import (
	"context"
	"fmt"

	"github.com/zetteln/server/httpserver"
	"github.com/zetteln/server/system"
)

// Load starts the admin server. Call it after everything else has registered
// its health checks with sys.
func Load(ctx context.Context, addr string, sys *system.System) (*httpserver.HTTPServer, error) {
	api, err := New(ctx, sys.HealthChecks())
	if err != nil {
		return nil, fmt.Errorf("error creating health check API: %w", err)
	}

	return httpserver.Load(ctx, "admin", addr, api.Handler(), sys)
}
