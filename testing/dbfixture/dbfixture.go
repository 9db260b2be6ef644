// Package dbfixture gives tests their own database on a shared MySQL (or Dolt)
// server. Tests are skipped when no server is reachable, unless CI=true.
package dbfixture

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/jmoiron/sqlx"
	"gotest.tools/v3/assert"

	"github.com/zetteln/server/config/secret"
	"github.com/zetteln/server/db"
	"github.com/zetteln/server/o11y"
	"github.com/zetteln/server/recontext"
)

var globalFixture = &SharedFixture{}

var mustRunAllTests = os.Getenv("CI") == "true"

type SharedFixture struct {
	once sync.Once
	m    *Manager
}

func (s *SharedFixture) Manager() *Manager {
	return s.m
}

// SetupSystem prepares the running system for use
// callers should not rely on the fact this currently uses a package global
func SetupSystem(t testing.TB, con Connection) *SharedFixture {
	t.Helper()
	globalFixture.once.Do(func() {
		var err error
		globalFixture.m, err = NewManager(con)
		if err != nil {
			var noDBError *NoDBError
			if errors.As(err, &noDBError) && !mustRunAllTests {
				t.Skip(noDBError.Error())
			}
			t.Fatal(err.Error())
		}
	})
	if globalFixture.m == nil {
		t.Skip("global fixtures failed setup")
	}
	return globalFixture
}

type Connection struct {
	// Target is a unix socket path or a TCP host:port, as in db.Config.
	Target   string
	User     string
	Password secret.String
}

// DefaultConnection reads DBFIXTURE_TARGET, falling back to a local server on
// the standard port with the root user.
func DefaultConnection() Connection {
	con := Connection{
		Target: os.Getenv("DBFIXTURE_TARGET"),
		User:   "root",
	}
	if con.Target == "" {
		con.Target = "localhost:3306"
	}
	return con
}

// Config returns the db config for the named database on this connection.
func (c Connection) Config(name string) db.Config {
	return db.Config{
		Target:         c.Target,
		User:           c.User,
		Pass:           c.Password,
		Name:           name,
		ConnectTimeout: 5 * time.Second,
	}
}

// Reserve picks a database name unique to the test and drops the database when
// the test ends. It does not create the database.
func Reserve(ctx context.Context, t testing.TB, con Connection) *Fixture {
	t.Helper()
	shared := SetupSystem(t, con)
	fix := shared.Manager().Reserve(con, t.Name())
	t.Cleanup(func() {
		ctx, cancel := recontext.WithNewTimeout(ctx, 10*time.Second)
		defer cancel()

		assert.Check(t, fix.Cleanup(ctx))
	})
	return fix
}

// SetupDB creates a database unique to the test with the schema applied.
func SetupDB(ctx context.Context, t testing.TB, schema string, con Connection) *Fixture {
	t.Helper()
	fix := Reserve(ctx, t, con)
	err := fix.create(ctx, schema)
	assert.Assert(t, err)
	return fix
}

type Manager struct {
	db *sqlx.DB
}

// NewManager connects as the admin user, without selecting a database.
func NewManager(con Connection) (*Manager, error) {
	d, err := newDB(con.Config(""))
	if err != nil {
		return nil, err
	}
	return &Manager{db: d}, nil
}

func (m *Manager) Close() error {
	return m.db.Close()
}

var invalidName = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

// Reserve returns a fixture with a database name generated from name with a random prefix.
func (m *Manager) Reserve(con Connection, name string) *Fixture {
	s := fmt.Sprintf("%s_%s", randomSuffix(), invalidName.ReplaceAllString(name, "_"))
	if len(s) > 64 {
		s = s[:64]
	}
	s = strings.ToLower(s)

	fix := &Fixture{
		DBName: s,
		Config: con.Config(s),
		admin:  m.db,
	}
	return fix
}

type Fixture struct {
	DBName string
	// Config selects DBName.
	Config db.Config
	// DB is only set by SetupDB.
	DB *sqlx.DB

	admin  *sqlx.DB
	tables []string
}

func (f *Fixture) create(ctx context.Context, schema string) (err error) {
	ctx, span := o11y.StartSpan(ctx, "dbfixture: create")
	defer o11y.End(span, &err)
	span.AddField("dbname", f.DBName)
	span.AddField("target", f.Config.Target)

	_, err = f.admin.ExecContext(ctx, "CREATE DATABASE "+db.QuoteIdentifier(f.DBName))
	if err != nil {
		return err
	}

	f.DB, err = newDB(f.Config)
	if err != nil {
		return err
	}

	o11y.Log(ctx, "applying schema")
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		_, err = f.DB.ExecContext(ctx, stmt)
		if err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	err = f.DB.SelectContext(ctx, &f.tables, tableNameQuery, f.DBName)
	if err != nil {
		return fmt.Errorf("could not get list of tables: %w", err)
	}
	return nil
}

// language=MySQL
const tableNameQuery = `
SELECT
	table_name
FROM
	information_schema.tables
WHERE
	table_type = 'BASE TABLE'
AND
	table_schema = ?`

// Reset deletes every row from the tables that existed after the schema was applied.
func (f *Fixture) Reset(ctx context.Context) error {
	return db.NewPool(f.DB).WithConn(ctx, func(ctx context.Context, q db.Querier) (err error) {
		_, err = q.ExecContext(ctx, `SET FOREIGN_KEY_CHECKS = 0`)
		if err != nil {
			return fmt.Errorf("could not disable constraint checks: %w", err)
		}
		for _, table := range f.tables {
			// nolint: gosec
			_, err = q.ExecContext(ctx, "DELETE FROM "+db.QuoteIdentifier(table))
			if err != nil {
				return fmt.Errorf("could not delete from table: %w", err)
			}
		}
		_, err = q.ExecContext(ctx, `SET FOREIGN_KEY_CHECKS = 1`)
		if err != nil {
			return fmt.Errorf("could not enable constraint checks: %w", err)
		}
		return nil
	})
}

// Cleanup closes the fixture's handle and drops its database, unless
// TEST_PRESERVE_DB is set.
func (f *Fixture) Cleanup(ctx context.Context) error {
	var err error
	if f.DB != nil {
		err = multierror.Append(err, f.DB.Close()).ErrorOrNil()
	}
	if err != nil {
		o11y.LogError(ctx, "db: cleanup", err)
	}

	if os.Getenv("TEST_PRESERVE_DB") != "" {
		return nil
	}

	_, dropErr := f.admin.ExecContext(ctx, "DROP DATABASE IF EXISTS "+db.QuoteIdentifier(f.DBName))
	if dropErr != nil {
		err = multierror.Append(err, fmt.Errorf("drop db: %w", dropErr))
	}
	return err
}

type NoDBError struct {
	err error
}

func (e *NoDBError) Error() string {
	return fmt.Sprintf("no database available: %s", e.err)
}

func (e *NoDBError) Unwrap() error {
	return e.err
}

func newDB(cfg db.Config) (*sqlx.DB, error) {
	d, err := sqlx.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, err
	}

	d.SetConnMaxLifetime(time.Hour)
	d.SetMaxOpenConns(10)
	d.SetMaxIdleConns(5)

	err = d.Ping()
	if err != nil {
		_ = d.Close()
		return nil, &NoDBError{err: err}
	}

	return d, nil
}

func randomSuffix() string {
	bytes := make([]byte, 3)
	if _, err := rand.Read(bytes); err != nil {
		return "notrandom"
	}
	return hex.EncodeToString(bytes)
}
