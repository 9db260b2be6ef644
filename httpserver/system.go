package httpserver

import (
	"context"
	"fmt"
	"net/http"

	"github.com/zetteln/server/system"
)

// Load binds a server and registers it, and its connection gauges, with sys.
func Load(ctx context.Context, name, addr string, handler http.Handler, sys *system.System) (*HTTPServer, error) {
	server, err := New(ctx, Config{
		Name:    name,
		Addr:    addr,
		Handler: handler,
	})
	if err != nil {
		return nil, fmt.Errorf("error starting %q server: %w", name, err)
	}

	sys.AddService(server.Serve)
	sys.AddGauges(server.listener)
	return server, nil
}
