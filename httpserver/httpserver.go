package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zetteln/server/o11y"
	"github.com/zetteln/server/recontext"
)

type HTTPServer struct {
	listener        *trackedListener
	server          *http.Server
	shutdownTimeout time.Duration
}

type Config struct {
	// Name is the name of the server in o11y
	Name string
	// Addr is the address to listen on
	Addr string
	// Handler is the HTTP handler to delegate requests to.
	Handler http.Handler

	// Optional
	// Network must be "tcp", "tcp4", "tcp6", "unix" or "" (which defaults to tcp).
	Network string
	// ShutdownTimeout bounds how long in flight requests get on shutdown, defaults to 10s.
	ShutdownTimeout time.Duration
}

// New binds the listener immediately, so the address is in use once New returns.
func New(ctx context.Context, cfg Config) (s *HTTPServer, err error) {
	_, span := o11y.StartSpan(ctx, "server: new-server "+cfg.Name)
	defer o11y.End(span, &err)
	if cfg.Network == "" {
		cfg.Network = "tcp"
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	span.AddField("server_name", cfg.Name)
	span.AddField("network", cfg.Network)

	ln, err := net.Listen(cfg.Network, cfg.Addr)
	if err != nil {
		return nil, err
	}
	span.AddField("address", ln.Addr().String())

	return &HTTPServer{
		listener: &trackedListener{Listener: ln, name: cfg.Name},
		server: &http.Server{
			Addr:              cfg.Addr,
			Handler:           cfg.Handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       55 * time.Second,
			WriteTimeout:      55 * time.Second,
			BaseContext: func(net.Listener) context.Context {
				return ctx
			},
		},
		shutdownTimeout: cfg.ShutdownTimeout,
	}, nil
}

// Serve the http server. On context cancellation the server is shut down, giving
// in flight requests some time to complete.
func (s *HTTPServer) Serve(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		cctx, cancel := recontext.WithNewTimeout(ctx, s.shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(cctx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		err := s.server.Serve(s.listener)
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	return g.Wait()
}

func (s *HTTPServer) Addr() string {
	return s.listener.Addr().String()
}
