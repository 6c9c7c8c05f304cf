package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrNotFound = errors.New("not found")

// Dialect selects the SQL flavour of the backing database.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

const (
	defaultQueryTimeout = 5 * time.Second
	maxRetries          = 3
)

// Store is the ledger collaborator: companies, chart of accounts, company
// accounts, mappings, periods, entries and forecast configurations, plus the
// filtered-sum query the statement engine is built on.
type Store struct {
	db      *sql.DB
	dialect Dialect
	timeout time.Duration
	closers []func()
}

// NewStore wraps an open database handle.
func NewStore(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect, timeout: defaultQueryTimeout}
}

// Open picks the driver from the URL scheme: postgres:// and postgresql://
// use pgx, everything else (sqlite://path, file:..., a bare path or
// :memory:) uses SQLite.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return OpenPostgres(ctx, databaseURL)
	case databaseURL == "":
		return nil, errors.New("database url is required")
	default:
		return OpenSQLite(strings.TrimPrefix(databaseURL, "sqlite://"))
	}
}

func (s *Store) Dialect() Dialect { return s.dialect }

// SetQueryTimeout bounds every single statement issued outside a transaction.
func (s *Store) SetQueryTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

// SetMaxOpenConns caps the Postgres connection count. SQLite stays on its
// single connection.
func (s *Store) SetMaxOpenConns(n int) {
	if n > 0 && s.dialect == Postgres {
		s.db.SetMaxOpenConns(n)
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	err := s.db.Close()
	for _, c := range s.closers {
		c()
	}
	return err
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *Store) rebind(query string) string {
	return rebind(s.dialect, query)
}

func rebind(d Dialect, query string) string {
	if d != Postgres {
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

func (s *Store) queryCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()
	return s.db.ExecContext(ctx, s.rebind(query), args...)
}

func (s *Store) txOptions() *sql.TxOptions {
	if s.dialect == Postgres {
		return &sql.TxOptions{Isolation: sql.LevelSerializable}
	}
	return nil
}

// InTx runs fn inside one transaction. On Postgres the transaction is
// SERIALIZABLE and retried on serialization failures; fn must therefore be
// safe to run more than once.
func (s *Store) InTx(ctx context.Context, fn func(*Tx) error) error {
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := s.runTx(ctx, fn)
		if err == nil {
			return nil
		}
		if isSerializationFailure(err) {
			if attempt == maxRetries-1 {
				return fmt.Errorf("transaction failed after %d retries due to serialization failure: %w", maxRetries, err)
			}
			time.Sleep(time.Duration(attempt+1) * 10 * time.Millisecond)
			continue
		}
		return err
	}
	return nil
}

func (s *Store) runTx(ctx context.Context, fn func(*Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, s.txOptions())
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&Tx{tx: sqlTx, dialect: s.dialect}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Tx exposes the write paths that must be atomic.
type Tx struct {
	tx      *sql.Tx
	dialect Dialect
}

func (t *Tx) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, rebind(t.dialect, query), args...)
}

func (t *Tx) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, rebind(t.dialect, query), args...)
}

func (t *Tx) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, rebind(t.dialect, query), args...)
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
