package db

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/zetteln/server/config/secret"
	"github.com/zetteln/server/o11y"
)

type Config struct {
	// Target is either a unix socket path, which starts with "/" (or "@" for
	// an abstract socket), or a TCP host:port.
	Target string
	User   string
	Pass   secret.String
	// Name is the database selected on connect. Empty means no database is
	// selected, which is what bootstrap needs before the database exists.
	Name string

	// Optional
	MaxOpenConns   int
	MaxIdleConns   int
	ConnectTimeout time.Duration
}

// Network returns "unix" or "tcp" depending on the shape of Target.
func (c Config) Network() string {
	if strings.HasPrefix(c.Target, "/") || strings.HasPrefix(c.Target, "@") {
		return "unix"
	}
	return "tcp"
}

// DSN returns the go-sql-driver data source name for the config.
func (c Config) DSN() string {
	mc := mysql.NewConfig()
	mc.Net = c.Network()
	mc.Addr = c.Target
	mc.User = c.User
	mc.Passwd = c.Pass.Raw()
	mc.DBName = c.Name
	mc.Timeout = c.ConnectTimeout
	if mc.Timeout == 0 {
		mc.Timeout = 5 * time.Second
	}
	mc.ParseTime = true
	return mc.FormatDSN()
}

var setLogger sync.Once

// New opens a handle to the database. No connection is made until first use.
func New(ctx context.Context, appName string, cfg Config) (db *sqlx.DB, err error) {
	_, span := o11y.StartSpan(ctx, "config: connect to database")
	defer o11y.End(span, &err)

	span.AddField("app_name", appName)
	span.AddField("network", cfg.Network())
	span.AddField("target", cfg.Target)
	span.AddField("dbname", cfg.Name)
	span.AddField("username", cfg.User)

	setLogger.Do(func() {
		_ = mysql.SetLogger(driverLogger{ctx: o11y.WithProvider(context.Background(), o11y.FromContext(ctx))})
	})

	db, err = sqlx.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = 10
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 5
	}
	span.AddField("max_open_conns", cfg.MaxOpenConns)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// driverLogger sends the driver's own diagnostics, like dropped connections, to o11y.
type driverLogger struct {
	ctx context.Context
}

func (l driverLogger) Print(v ...interface{}) {
	o11y.Log(l.ctx, "db: driver", o11y.Field("message", fmt.Sprint(v...)))
}
