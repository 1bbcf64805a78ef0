// Package store provides relational persistence for the names dataset.
//
// Two backends sit behind database/sql: SQLite through modernc.org/sqlite
// (pure Go, the default, a single names.db file) and PostgreSQL through
// pgx's stdlib driver. Queries are written once with "?" placeholders and
// rebound for PostgreSQL.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // Registers the "pgx" driver
	_ "modernc.org/sqlite"             // Registers the "sqlite" driver
)

//go:embed schema_sqlite.sql
var sqliteSchema string

//go:embed schema_postgres.sql
var postgresSchema string

// Driver names a database/sql driver.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "pgx"
)

// ParseDriver accepts the driver names used in configuration.
func ParseDriver(s string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite, nil
	case "pgx", "postgres", "postgresql":
		return DriverPostgres, nil
	default:
		return "", fmt.Errorf("unknown database driver %q (want sqlite or pgx)", s)
	}
}

// Options configures Open.
type Options struct {
	Driver       Driver
	DSN          string
	MaxOpenConns int // Ignored for SQLite, which always uses a single connection
	Logger       *slog.Logger
}

// Store provides access to the names database.
type Store struct {
	db     *sql.DB
	driver Driver
	logger *slog.Logger
}

// Open connects to the database and verifies the connection.
// It does not create the schema; see Bootstrap.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.Driver == "" {
		opts.Driver = DriverSQLite
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	dsn := opts.DSN
	if opts.Driver == DriverSQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(string(opts.Driver), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.Driver, err)
	}

	switch opts.Driver {
	case DriverSQLite:
		// One writer, and the pragmas in the DSN apply per connection.
		db.SetMaxOpenConns(1)
	default:
		if opts.MaxOpenConns > 0 {
			db.SetMaxOpenConns(opts.MaxOpenConns)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", opts.Driver, err)
	}

	return &Store{db: db, driver: opts.Driver, logger: opts.Logger}, nil
}

// sqliteDSN enables foreign keys (needed for ON DELETE CASCADE) and a busy
// timeout on every connection.
func sqliteDSN(dsn string) string {
	if dsn == "" {
		dsn = "names.db"
	}
	if strings.Contains(dsn, "_pragma=foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver returns the driver the store was opened with.
func (s *Store) Driver() Driver {
	return s.driver
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// rebind rewrites "?" placeholders to "$n" for PostgreSQL.
// Queries in this package never contain a literal "?".
func (s *Store) rebind(query string) string {
	return rebind(s.driver, query)
}

func rebind(driver Driver, query string) string {
	if driver != DriverPostgres || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// schema returns the DDL for the store's dialect.
func (s *Store) schema() string {
	if s.driver == DriverPostgres {
		return postgresSchema
	}
	return sqliteSchema
}
