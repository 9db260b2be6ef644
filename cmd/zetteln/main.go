package main

import (
	"context"
	"errors"
	"log" //nolint:depguard // non-o11y log is allowed for a top-level fatal
	"time"

	"github.com/alecthomas/kong"

	"github.com/zetteln/server/api"
	"github.com/zetteln/server/cmd"
	"github.com/zetteln/server/cmd/setup"
	"github.com/zetteln/server/httpserver"
	"github.com/zetteln/server/httpserver/healthcheck"
	"github.com/zetteln/server/o11y"
	"github.com/zetteln/server/system"
	"github.com/zetteln/server/termination"
	"github.com/zetteln/server/version"
)

type cli struct {
	setup.CLI

	ShutdownDelay time.Duration `env:"SHUTDOWN_DELAY" default:"5s" help:"Delay shutdown by this amount" hidden:""`
	APIAddr       string        `env:"API_ADDR" default:"0.0.0.0:8080" help:"The address for the API to listen on"`
}

func main() {
	if err := setup.LoadDotEnv(".env", "../.env"); err != nil {
		log.Fatal("Unexpected Error: ", err)
	}

	c := cli{}
	kong.Parse(&c,
		kong.Name("zetteln"),
		kong.Description("Serves version information for the zetteln notes database."),
	)

	err := run(cmd.Version, cmd.Date, c)
	if err != nil && !errors.Is(err, termination.ErrTerminated) {
		log.Fatal("Unexpected Error: ", err)
	}
	log.Println("exited 0")
}

func run(version, date string, cli cli) (err error) {
	ctx, o11yCleanup, err := setup.LoadO11y(version, "api", cli.CLI)
	if err != nil {
		return err
	}
	defer o11yCleanup(ctx)

	ctx, runSpan := o11y.StartSpan(ctx, "main: run")
	defer o11y.End(runSpan, &err)

	o11y.Log(ctx, "starting zetteln",
		o11y.Field("version", version),
		o11y.Field("date", date),
	)

	// Nothing listens until the database is known to be usable.
	res, err := setup.Bootstrap(ctx, cli.CLI)
	if err != nil {
		return err
	}
	o11y.Log(ctx, "database ready",
		o11y.Field("server_version", res.ServerVersion),
		o11y.Field("seeded", res.Seeded),
	)

	sys := system.New()
	defer sys.Cleanup(ctx)

	err = loadAPI(ctx, version, cli, sys)
	if err != nil {
		return err
	}

	// Should be last so it collects all the health checks
	_, err = healthcheck.Load(ctx, cli.AdminAddr, sys)
	if err != nil {
		return err
	}

	return sys.Run(ctx, cli.ShutdownDelay)
}

func loadAPI(ctx context.Context, appVersion string, cli cli, sys *system.System) error {
	pool, err := setup.LoadPool(ctx, cli.CLI, sys)
	if err != nil {
		return err
	}

	a := api.New(ctx, api.Options{
		Versions: version.New(pool, appVersion, version.WithQueryTimeout(cli.QueryTimeout)),
	})

	_, err = httpserver.Load(ctx, "api", cli.APIAddr, a.Handler(), sys)
	return err
}
