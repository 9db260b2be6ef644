package healthcheck

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hellofresh/health-go/v4"

	"github.com/zetteln/server/httpserver/ginrouter"
	"github.com/zetteln/server/system"
)

const checkTimeout = 5 * time.Second

type API struct {
	router *gin.Engine
}

func New(ctx context.Context, checked []system.HealthChecker) (*API, error) {
	r := ginrouter.Default(ctx, "admin")

	live, ready, err := newHealthHandlers(checked)
	if err != nil {
		return nil, fmt.Errorf("failed to create health checks: %w", err)
	}

	r.GET("/live", gin.WrapH(live.Handler()))
	r.GET("/ready", gin.WrapH(ready.Handler()))
	r.GET("/debug/pprof/*profile", profile)

	return &API{router: r}, nil
}

func (a *API) Handler() http.Handler {
	return a.router
}

// profile dispatches to the pprof handlers. pprof.Index serves the named
// runtime profiles itself, based on the request path.
func profile(c *gin.Context) {
	switch strings.Trim(c.Param("profile"), "/") {
	case "cmdline":
		pprof.Cmdline(c.Writer, c.Request)
	case "profile":
		pprof.Profile(c.Writer, c.Request)
	case "symbol":
		pprof.Symbol(c.Writer, c.Request)
	case "trace":
		pprof.Trace(c.Writer, c.Request)
	default:
		pprof.Index(c.Writer, c.Request)
	}
}

func newHealthHandlers(checked []system.HealthChecker) (live, ready *health.Health, err error) {
	live, err = health.New()
	if err != nil {
		return nil, nil, err
	}
	ready, err = health.New()
	if err != nil {
		return nil, nil, err
	}

	for _, c := range checked {
		name, readyCheck, liveCheck := c.HealthChecks()
		if err := register(ready, name, readyCheck); err != nil {
			return nil, nil, err
		}
		if err := register(live, name, liveCheck); err != nil {
			return nil, nil, err
		}
	}
	return live, ready, nil
}

func register(h *health.Health, name string, check func(ctx context.Context) error) error {
	if check == nil {
		return nil
	}
	return h.Register(health.Config{
		Name:      name,
		Timeout:   checkTimeout,
		SkipOnErr: false,
		Check:     check,
	})
}
