package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/zetteln/server/system"
)

type HealthCheck struct {
	Name string
	DB   *sqlx.DB
}

func (h *HealthCheck) HealthChecks() (name string, ready, live func(ctx context.Context) error) {
	return h.Name, newMySQLHealthCheck(h.DB), nil
}

func (h *HealthCheck) GaugeName() string {
	return "db_pool"
}

func (h *HealthCheck) Gauges(_ context.Context) map[string][]system.TaggedValue {
	stats := h.DB.Stats()
	tags := []string{"db:" + h.Name}
	gauge := func(v float64) []system.TaggedValue {
		return []system.TaggedValue{{Val: v, Tags: tags}}
	}
	return map[string][]system.TaggedValue{
		"open":                 gauge(float64(stats.OpenConnections)),
		"in_use":               gauge(float64(stats.InUse)),
		"idle":                 gauge(float64(stats.Idle)),
		"wait_count":           gauge(float64(stats.WaitCount)),
		"wait_duration":        gauge(float64(stats.WaitDuration / time.Millisecond)),
		"max_idle_closed":      gauge(float64(stats.MaxIdleClosed)),
		"max_idle_time_closed": gauge(float64(stats.MaxIdleTimeClosed)),
		"max_lifetime_closed":  gauge(float64(stats.MaxLifetimeClosed)),
	}
}

// newMySQLHealthCheck pings the server and then runs a trivial read.
func newMySQLHealthCheck(db *sqlx.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("mysql health check failed on ping: %w", err)
		}

		var version string
		if err := db.GetContext(ctx, &version, `SELECT @@version`); err != nil {
			return fmt.Errorf("mysql health check failed on select: %w", err)
		}
		return nil
	}
}
