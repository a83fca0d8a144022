// Package db executes compiled statements against database/sql.
package db

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver

	"github.com/sqlzgo/sqlz/sqlgen"
	"github.com/sqlzgo/sqlz/stmt"
)

// Conn wraps a database handle together with the provider it was opened
// for, so placeholders can be rebound to the provider's syntax.
type Conn struct {
	db       *sql.DB
	provider string
	log      *zap.Logger
}

// Option configures a Conn.
type Option func(*Conn)

// WithLogger attaches a logger. Compile warnings log at Warn, statement
// text and parameters at Debug. Without it the connection stays silent.
func WithLogger(l *zap.Logger) Option {
	return func(c *Conn) { c.log = l }
}

// Open connects to a database. Provider is one of postgres, postgresql,
// mysql or sqlite.
func Open(provider, dsn string, opts ...Option) (*Conn, error) {
	driverName := driverFor(provider)
	if driverName == "" {
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
	handle, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	return newConn(handle, provider, opts), nil
}

// FromDB wraps an existing database handle.
func FromDB(provider string, handle *sql.DB, opts ...Option) *Conn {
	return newConn(handle, provider, opts)
}

func newConn(handle *sql.DB, provider string, opts []Option) *Conn {
	c := &Conn{db: handle, provider: provider, log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// driverFor maps provider names to registered driver names.
func driverFor(provider string) string {
	switch provider {
	case "postgresql", "postgres":
		return "postgres"
	case "mysql":
		return "mysql"
	case "sqlite":
		return "sqlite3"
	default:
		return ""
	}
}

// Connect verifies the connection.
func (c *Conn) Connect(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes the underlying handle.
func (c *Conn) Close() error {
	return c.db.Close()
}

// DB returns the underlying database handle.
func (c *Conn) DB() *sql.DB {
	return c.db
}

// Exec compiles and executes a statement that returns no rows.
func (c *Conn) Exec(ctx context.Context, d stmt.Draft) (sql.Result, error) {
	compiled, err := c.prepare(d)
	if err != nil {
		return nil, err
	}
	return c.db.ExecContext(ctx, compiled.SQL, compiled.Args...)
}

// Query compiles and executes a statement that returns rows.
func (c *Conn) Query(ctx context.Context, d stmt.Draft) (*sql.Rows, error) {
	compiled, err := c.prepare(d)
	if err != nil {
		return nil, err
	}
	return c.db.QueryContext(ctx, compiled.SQL, compiled.Args...)
}

// QueryRow compiles and executes a statement expected to return at most
// one row.
func (c *Conn) QueryRow(ctx context.Context, d stmt.Draft) (*sql.Row, error) {
	compiled, err := c.prepare(d)
	if err != nil {
		return nil, err
	}
	return c.db.QueryRowContext(ctx, compiled.SQL, compiled.Args...), nil
}

// ExecSQL runs raw SQL; DDL from schema.CreateTable goes through here.
func (c *Conn) ExecSQL(ctx context.Context, query string, args ...any) (sql.Result, error) {
	c.log.Debug("exec", zap.String("sql", query))
	return c.db.ExecContext(ctx, query, args...)
}

func (c *Conn) prepare(d stmt.Draft) (*sqlgen.Statement, error) {
	compiled, err := sqlgen.Compile(d)
	if err != nil {
		return nil, err
	}
	for _, w := range compiled.Warnings {
		c.log.Warn(w)
	}
	compiled.SQL = Rebind(c.provider, compiled.SQL)
	c.log.Debug("statement",
		zap.String("sql", compiled.SQL),
		zap.Any("args", compiled.Args),
	)
	return compiled, nil
}
