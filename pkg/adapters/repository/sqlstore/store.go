// Package sqlstore persists profiles, pages, links and analytics events in a
// SQL database. The same code runs on local SQLite, Turso (libsql) and
// PostgreSQL; the driver is chosen from the database URL.
package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"                   // PostgreSQL driver
	"github.com/pressly/goose/v3"
	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	_ "modernc.org/sqlite"                               // Local SQLite driver

	"github.com/wadjakorntonsri/linkpage/pkg/logger"
	"github.com/wadjakorntonsri/linkpage/pkg/ports"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Dialect identifies the SQL flavour behind a Store.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectLibSQL   Dialect = "libsql"
	DialectPostgres Dialect = "postgres"
)

// Store implements every repository port over one *sql.DB.
type Store struct {
	db      *sql.DB
	dialect Dialect
	sb      squirrel.StatementBuilderType
	log     *logger.Logger
}

var (
	_ ports.LinkRepository      = (*Store)(nil)
	_ ports.PageRepository      = (*Store)(nil)
	_ ports.ProfileRepository   = (*Store)(nil)
	_ ports.AnalyticsRepository = (*Store)(nil)
)

// DriverFor maps a database URL to a database/sql driver name and DSN.
func DriverFor(dbURL string) (driver string, dsn string, dialect Dialect) {
	switch {
	case strings.HasPrefix(dbURL, "libsql://"), strings.HasPrefix(dbURL, "wss://"):
		return "libsql", dbURL, DialectLibSQL
	case strings.HasPrefix(dbURL, "postgres://"), strings.HasPrefix(dbURL, "postgresql://"):
		return "pgx", dbURL, DialectPostgres
	default:
		return "sqlite", strings.TrimPrefix(dbURL, "sqlite://"), DialectSQLite
	}
}

// Open connects to dbURL and checks the connection. Migrations are not run;
// call Migrate.
func Open(ctx context.Context, dbURL string, log *logger.Logger) (*Store, error) {
	driver, dsn, dialect := DriverFor(dbURL)

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}

	// Every connection to an in-memory SQLite database is a new database.
	if dialect == DialectSQLite && strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}

	return &Store{
		db:      db,
		dialect: dialect,
		sb:      statementBuilder(dialect),
		log:     log.With(map[string]any{"component": "sqlstore", "dialect": string(dialect)}),
	}, nil
}

// Migrate applies every pending embedded migration.
func (s *Store) Migrate(ctx context.Context) error {
	dir, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return err
	}

	gooseDialect := goose.DialectSQLite3
	if s.dialect == DialectPostgres {
		gooseDialect = goose.DialectPostgres
	}

	provider, err := goose.NewProvider(gooseDialect, s.db, dir)
	if err != nil {
		return fmt.Errorf("goose new provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	for _, r := range results {
		s.log.With(map[string]any{"version": r.Source.Version, "duration": r.Duration.String()}).Info("migration applied")
	}
	return nil
}

func (s *Store) Dialect() Dialect { return s.dialect }

func (s *Store) Close() error {
	return s.db.Close()
}

func statementBuilder(d Dialect) squirrel.StatementBuilderType {
	var placeholder squirrel.PlaceholderFormat = squirrel.Question
	if d == DialectPostgres {
		placeholder = squirrel.Dollar
	}
	return squirrel.StatementBuilder.PlaceholderFormat(placeholder)
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func exec(ctx context.Context, q querier, b squirrel.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return q.ExecContext(ctx, query, args...)
}

func query(ctx context.Context, q querier, b squirrel.Sqlizer) (*sql.Rows, error) {
	stmt, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return q.QueryContext(ctx, stmt, args...)
}

func queryRow(ctx context.Context, q querier, b squirrel.Sqlizer) *rowResult {
	stmt, args, err := b.ToSql()
	if err != nil {
		return &rowResult{err: err}
	}
	return &rowResult{row: q.QueryRowContext(ctx, stmt, args...)}
}

// rowResult defers a ToSql error to Scan, like *sql.Row does for query errors.
type rowResult struct {
	row *sql.Row
	err error
}

func (r *rowResult) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return r.row.Scan(dest...)
}

// inTx runs fn in a transaction, rolling back on error.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// expectOne turns "no row matched" into sql.ErrNoRows.
func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return sql.ErrNoRows
	}
	return nil
}

// Fixed-width so that text comparison orders the same as time on SQLite.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func dbTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

var readLayouts = []string{
	timeLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05",
}

// timestamp scans the several shapes drivers hand back for a TIMESTAMP column.
type timestamp struct{ time.Time }

func (t *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
	case time.Time:
		t.Time = v.UTC()
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	case int64:
		t.Time = time.Unix(v, 0).UTC()
	default:
		return fmt.Errorf("sqlstore: cannot scan %T into timestamp", src)
	}
	return nil
}

func (t *timestamp) parse(s string) error {
	for _, layout := range readLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("sqlstore: unrecognised timestamp %q", s)
}

var timeNow = time.Now

func millis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
