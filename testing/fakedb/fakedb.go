// Package fakedb is a scripted database/sql driver. Tests register canned
// results by statement prefix and inspect the statements that were run and the
// connections that were opened.
package fakedb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
)

// Result is the canned response to a statement.
type Result struct {
	Columns      []string
	Rows         [][]driver.Value
	RowsAffected int64
	Err          error
	// Block holds the statement until it is closed or the statement's context is done.
	Block <-chan struct{}
}

// Row is a single row, single column result.
func Row(column string, value driver.Value) Result {
	return Result{Columns: []string{column}, Rows: [][]driver.Value{{value}}}
}

// Call is a statement that was run, with its arguments.
type Call struct {
	Query string
	Args  []driver.Value
}

type response struct {
	prefix string
	result Result
}

type DB struct {
	// ConnectErr, when set, fails every new connection.
	ConnectErr error

	mu         sync.Mutex
	responses  []response
	calls      []Call
	opened     int
	closed     int
}

func New() *DB {
	return &DB{}
}

// On sets the result for statements starting with prefix, ignoring case and
// whitespace differences. Later calls take precedence.
func (d *DB) On(prefix string, r Result) *DB {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.responses = append(d.responses, response{prefix: normalise(prefix), result: r})
	return d
}

// Open returns a handle using the fake driver, with mysql placeholders.
func (d *DB) Open() *sqlx.DB {
	return sqlx.NewDb(sql.OpenDB(connector{d: d}), "mysql")
}

// Statements returns every statement run so far, normalised.
func (d *DB) Statements() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	statements := make([]string, 0, len(d.calls))
	for _, c := range d.calls {
		statements = append(statements, c.Query)
	}
	return statements
}

// Calls returns every statement run so far along with its arguments.
func (d *DB) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Call(nil), d.calls...)
}

// OpenConns returns the number of driver connections not yet closed.
func (d *DB) OpenConns() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opened - d.closed
}

// Opened returns the number of driver connections ever opened.
func (d *DB) Opened() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opened
}

func (d *DB) run(ctx context.Context, query string, named []driver.NamedValue) (Result, error) {
	q := normalise(query)
	var args []driver.Value
	for _, nv := range named {
		args = append(args, nv.Value)
	}

	d.mu.Lock()
	d.calls = append(d.calls, Call{Query: q, Args: args})
	var r Result
	found := false
	for i := len(d.responses) - 1; i >= 0; i-- {
		if strings.HasPrefix(strings.ToLower(q), strings.ToLower(d.responses[i].prefix)) {
			r, found = d.responses[i].result, true
			break
		}
	}
	d.mu.Unlock()

	if !found {
		return Result{}, nil
	}
	if r.Block != nil {
		select {
		case <-r.Block:
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}
	return r, r.Err
}

func normalise(q string) string {
	return strings.Join(strings.Fields(q), " ")
}

type connector struct {
	d *DB
}

func (c connector) Connect(context.Context) (driver.Conn, error) {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	if c.d.ConnectErr != nil {
		return nil, c.d.ConnectErr
	}
	c.d.opened++
	return &conn{d: c.d}, nil
}

func (c connector) Driver() driver.Driver {
	return fakeDriver{}
}

type fakeDriver struct{}

func (fakeDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("fakedb: use the connector")
}

type conn struct {
	d      *DB
	closed bool
}

var (
	_ driver.ExecerContext  = (*conn)(nil)
	_ driver.QueryerContext = (*conn)(nil)
)

func (c *conn) Prepare(query string) (driver.Stmt, error) {
	return nil, fmt.Errorf("fakedb: prepared statements are not supported: %q", query)
}

func (c *conn) Begin() (driver.Tx, error) {
	return nil, errors.New("fakedb: transactions are not supported")
}

func (c *conn) Close() error {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	if !c.closed {
		c.closed = true
		c.d.closed++
	}
	return nil
}

func (c *conn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	r, err := c.d.run(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return driver.RowsAffected(r.RowsAffected), nil
}

func (c *conn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	r, err := c.d.run(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return &rows{columns: r.Columns, values: r.Rows}, nil
}

type rows struct {
	columns []string
	values  [][]driver.Value
}

func (r *rows) Columns() []string {
	return r.columns
}

func (r *rows) Close() error {
	return nil
}

func (r *rows) Next(dest []driver.Value) error {
	if len(r.values) == 0 {
		return io.EOF
	}
	copy(dest, r.values[0])
	r.values = r.values[1:]
	return nil
}
