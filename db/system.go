package db

import (
	"context"

	"github.com/zetteln/server/system"
)

// Load opens the pool and registers its health check, gauges and close with sys.
func Load(ctx context.Context, appName string, cfg Config, sys *system.System) (*Pool, error) {
	db, err := New(ctx, appName, cfg)
	if err != nil {
		return nil, err
	}

	check := &HealthCheck{Name: cfg.Name, DB: db}
	sys.AddGauges(check)
	sys.AddHealthCheck(check)

	pool := NewPool(db)
	sys.AddCleanup(func(ctx context.Context) error {
		return pool.Close()
	})
	return pool, nil
}
