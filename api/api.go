// Package api serves the public HTTP API.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zetteln/server/httpserver/ginrouter"
	"github.com/zetteln/server/version"
)

type VersionGetter interface {
	GetVersionInfo(ctx context.Context) (version.Info, error)
}

type API struct {
	router   *gin.Engine
	versions VersionGetter
}

type Options struct {
	Versions VersionGetter
}

func New(ctx context.Context, opts Options) *API {
	r := ginrouter.Default(ctx, "api")
	a := &API{
		router:   r,
		versions: opts.Versions,
	}

	r.GET("/api/version", a.getVersion)

	return a
}

func (a *API) Handler() http.Handler {
	return a.router
}
