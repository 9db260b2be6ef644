// Package bootstrap brings a freshly provisioned database into a usable state:
// the database exists, the notes table exists, and an empty table holds the
// demo note. It runs once at startup, before the pool or any listener exists.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/zetteln/server/closer"
	"github.com/zetteln/server/db"
	"github.com/zetteln/server/notes"
	"github.com/zetteln/server/o11y"
)

// ErrFatal wraps every bootstrap failure. The process must not go on to serve.
var ErrFatal = errors.New("bootstrap failed")

type Options struct {
	// Database is created if missing and selected for the rest of the sequence.
	Database string
	// Seed is inserted when the notes table is empty.
	Seed           notes.Note
	ConnectTimeout time.Duration
}

func (o *Options) defaults() {
	if o.Database == "" {
		o.Database = "zetteln"
	}
	if o.Seed == (notes.Note{}) {
		o.Seed = notes.Demo
	}
	if o.ConnectTimeout == 0 {
		o.ConnectTimeout = 5 * time.Second
	}
}

type Result struct {
	ServerVersion string
	// Count is the number of notes found before seeding.
	Count  int
	Seeded bool
}

var open = func(ctx context.Context, cfg db.Config) (*sqlx.DB, error) {
	return db.New(ctx, "bootstrap", cfg)
}

// Run connects with the admin config, without selecting a database, and runs
// the bootstrap statements in order on a single connection. The handle is
// always closed before Run returns.
func Run(ctx context.Context, cfg db.Config, opts Options) (res Result, err error) {
	ctx, span := o11y.StartSpan(ctx, "bootstrap: run")
	defer o11y.End(span, &err)

	opts.defaults()
	span.AddField("database", opts.Database)
	span.AddField("target", cfg.Target)

	cfg.Name = ""
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = opts.ConnectTimeout
	}

	sqlDB, err := open(ctx, cfg)
	if err != nil {
		return res, fmt.Errorf("%w: open: %w", ErrFatal, err)
	}
	defer closer.ErrorHandler(sqlDB, &err)
	// USE only applies to the session it runs on, so everything shares one connection.
	sqlDB.SetMaxOpenConns(1)

	err = db.NewPool(sqlDB).WithConn(ctx, func(ctx context.Context, q db.Querier) (err error) {
		res, err = run(ctx, q, opts)
		return err
	})
	span.AddField("server_version", res.ServerVersion)
	span.AddField("count", res.Count)
	span.AddField("seeded", res.Seeded)
	if err != nil && !errors.Is(err, ErrFatal) {
		return res, fmt.Errorf("%w: %w", ErrFatal, err)
	}
	return res, err
}

func run(ctx context.Context, q db.Querier, opts Options) (res Result, err error) {
	name := db.QuoteIdentifier(opts.Database)

	err = q.GetContext(ctx, &res.ServerVersion, `SELECT @@version`)
	if err != nil {
		return res, fatal("server version", err)
	}

	steps := []struct {
		name string
		sql  string
	}{
		{name: "create database", sql: "CREATE DATABASE IF NOT EXISTS " + name},
		{name: "use database", sql: "USE " + name},
		{name: "apply schema", sql: notes.Schema},
	}
	for _, s := range steps {
		if err = exec(ctx, q, s.name, s.sql); err != nil {
			return res, err
		}
	}

	res.Count, err = notes.Count(ctx, q)
	if err != nil {
		return res, fatal("count notes", err)
	}
	if res.Count != 0 {
		return res, nil
	}

	err = notes.Insert(ctx, q, opts.Seed)
	switch {
	case errors.Is(err, db.ErrNop):
		// Another instance seeded the table between our count and insert.
		o11y.LogError(ctx, "bootstrap: seed already present", err, o11y.Field("id", opts.Seed.ID))
		return res, nil
	case err != nil:
		return res, fatal("seed", err)
	}
	res.Seeded = true
	return res, nil
}

func exec(ctx context.Context, q db.Querier, name, sql string) (err error) {
	ctx, span := o11y.StartSpan(ctx, "bootstrap: "+name)
	defer o11y.End(span, &err)

	_, err = q.ExecContext(ctx, sql)
	if err != nil {
		return fatal(name, err)
	}
	return nil
}

func fatal(step string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrFatal, step, err)
}
