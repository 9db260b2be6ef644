// Package setup contains the wiring shared by the zetteln commands.
package setup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
	_ "time/tzdata" // include embedded timezone data

	"github.com/joho/godotenv"

	"github.com/zetteln/server/bootstrap"
	"github.com/zetteln/server/config/o11y"
	"github.com/zetteln/server/config/secret"
	"github.com/zetteln/server/db"
	"github.com/zetteln/server/system"
)

type CLI struct {
	AdminAddr string `env:"ADMIN_ADDR" default:":8001" help:"The address for the admin api to listen on"`

	O11yStatsd           string        `name:"o11y-statsd" env:"O11Y_STATSD" help:"Address to send statsd metrics, disabled when empty"`
	O11yHoneycombEnabled bool          `name:"o11y-honeycomb" env:"O11Y_HONEYCOMB" default:"false" help:"Send traces to honeycomb"`
	O11yHoneycombDataset string        `name:"o11y-honeycomb-dataset" env:"O11Y_HONEYCOMB_DATASET" default:"zetteln"`
	O11yHoneycombKey     secret.String `name:"o11y-honeycomb-key" env:"O11Y_HONEYCOMB_KEY"`
	O11ySampleTraces     bool          `name:"o11y-sample-traces" env:"O11Y_SAMPLE_TRACES" default:"false" help:"Sample health check traces"`
	O11yFormat           string        `name:"o11y-format" env:"O11Y_FORMAT" enum:"json,color,colour,text,none" default:"json" help:"Format used for stderr logging"`
	O11yRollbarToken     secret.String `name:"o11y-rollbar-token" env:"O11Y_ROLLBAR_TOKEN"`
	O11yRollbarEnv       string        `name:"o11y-rollbar-env" env:"O11Y_ROLLBAR_ENV" default:"production"`

	DatabaseSocket string        `name:"database-socket" env:"DATABASE_SOCKET" default:"/var/run/mysqld/mysqld.sock" help:"Unix socket path, or host:port for TCP"`
	DBUser         string        `name:"db-user" env:"DB_USER" default:"root"`
	DBPassword     secret.String `name:"db-password" env:"DB_PASSWORD"`
	DBName         string        `name:"db-name" env:"DB_NAME" default:"zetteln"`
	DBMaxOpenConns int           `name:"db-max-open-conns" env:"DB_MAX_OPEN_CONNS" default:"10"`
	DBMaxIdleConns int           `name:"db-max-idle-conns" env:"DB_MAX_IDLE_CONNS" default:"5"`
	QueryTimeout   time.Duration `name:"query-timeout" env:"QUERY_TIMEOUT" default:"5s" help:"Bound on a single version query"`
}

// LoadDotEnv loads the first of the given files that exists into the
// environment. Variables already set are left alone.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		_, err := os.Stat(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
		return nil
	}
	return nil
}

// healthCheckRates keeps 1 in 100 successful health check traces when sampling.
var healthCheckRates = map[string]int{
	"admin /live 200":  100,
	"admin /ready 200": 100,
}

func LoadO11y(version, mode string, cli CLI) (context.Context, func(context.Context), error) {
	cfg := o11y.Config{
		Statsd:            cli.O11yStatsd,
		RollbarToken:      cli.O11yRollbarToken,
		RollbarEnv:        cli.O11yRollbarEnv,
		RollbarServerRoot: "github.com/zetteln/server",
		HoneycombEnabled:  cli.O11yHoneycombEnabled,
		HoneycombDataset:  cli.O11yHoneycombDataset,
		HoneycombKey:      cli.O11yHoneycombKey,
		SampleTraces:      cli.O11ySampleTraces,
		SampleRates:       healthCheckRates,
		Format:            cli.O11yFormat,
		Version:           version,
		Service:           "zetteln",
		StatsNamespace:    "zetteln.",
		Mode:              mode,
	}
	return o11y.Setup(context.Background(), cfg)
}

// AdminDBConfig connects without selecting a database, so it works before the
// database exists.
func AdminDBConfig(cli CLI) db.Config {
	return db.Config{
		Target:         cli.DatabaseSocket,
		User:           cli.DBUser,
		Pass:           cli.DBPassword,
		ConnectTimeout: 5 * time.Second,
	}
}

// AppDBConfig selects the application database and sizes the pool.
func AppDBConfig(cli CLI) db.Config {
	return db.Config{
		Target:         cli.DatabaseSocket,
		User:           cli.DBUser,
		Pass:           cli.DBPassword,
		Name:           cli.DBName,
		MaxOpenConns:   cli.DBMaxOpenConns,
		MaxIdleConns:   cli.DBMaxIdleConns,
		ConnectTimeout: 5 * time.Second,
	}
}

func Bootstrap(ctx context.Context, cli CLI) (bootstrap.Result, error) {
	return bootstrap.Run(ctx, AdminDBConfig(cli), bootstrap.Options{
		Database: cli.DBName,
	})
}

func LoadPool(ctx context.Context, cli CLI, sys *system.System) (*db.Pool, error) {
	return db.Load(ctx, "zetteln", AppDBConfig(cli), sys)
}
