// Package version answers "which build is this, and which database server is it talking to".
package version

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zetteln/server/db"
	"github.com/zetteln/server/o11y"
)

// ErrUnavailable wraps every failure to read the database version.
var ErrUnavailable = errors.New("database version unavailable")

type Info struct {
	Version  string `json:"version"`
	Database string `json:"database"`
}

type Service struct {
	pool         *db.Pool
	appVersion   string
	queryTimeout time.Duration
}

type Option func(*Service)

// WithQueryTimeout bounds a single call, including time spent waiting for a pooled connection.
func WithQueryTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.queryTimeout = d
	}
}

func New(pool *db.Pool, appVersion string, opts ...Option) *Service {
	s := &Service{
		pool:         pool,
		appVersion:   appVersion,
		queryTimeout: 5 * time.Second,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// GetVersionInfo reads the server version over a dedicated pooled connection.
// Nothing is cached.
func (s *Service) GetVersionInfo(ctx context.Context) (info Info, err error) {
	ctx, span := o11y.StartSpan(ctx, "version: get-version-info")
	defer o11y.End(span, &err)

	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	info.Version = s.appVersion
	err = s.pool.WithConn(ctx, func(ctx context.Context, q db.Querier) (err error) {
		info.Database, err = queryServerVersion(ctx, q)
		return err
	})
	if err != nil {
		return Info{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	span.AddField("database", info.Database)
	return info, nil
}

func queryServerVersion(ctx context.Context, q db.Querier) (v string, err error) {
	ctx, span := db.Span(ctx, "server", "version")
	defer o11y.End(span, &err)

	err = q.GetContext(ctx, &v, `SELECT @@version`)
	return v, err
}
