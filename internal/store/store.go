// Package store implements the session credential store backed by SQLite
// (default) or PostgreSQL, selected by the DSN scheme.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Store wraps a SQL database connection for credential persistence.
type Store struct {
	db      *sql.DB
	dialect dialect

	lookupSessionStmt *sql.Stmt
}

const defaultMaxOpenConns = 10
const defaultMaxIdleConns = 10

const lookupSessionQuery = `SELECT val FROM session_cookies WHERE username = ? LIMIT 1`

// OpenOptions controls connection pool sizing.
type OpenOptions struct {
	MaxOpenConns int
	MaxIdleConns int
}

// Open creates or opens the database at dsn and runs migrations. A dsn
// starting with postgres:// or postgresql:// selects PostgreSQL, anything
// else is treated as a SQLite path.
func Open(dsn string) (*Store, error) {
	return OpenWithOptions(dsn, OpenOptions{})
}

// OpenWithOptions is like [Open] with tunable connection pool settings.
func OpenWithOptions(dsn string, opts OpenOptions) (*Store, error) {
	d := detectDialect(dsn)
	db, err := d.open(dsn)
	if err != nil {
		return nil, err
	}

	maxOpenConns := opts.MaxOpenConns
	if maxOpenConns <= 0 {
		maxOpenConns = defaultMaxOpenConns
	}
	maxIdleConns := opts.MaxIdleConns
	if maxIdleConns <= 0 {
		maxIdleConns = defaultMaxIdleConns
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)

	if err := d.setup(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db, dialect: d}
	if err := s.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.prepareStatements(context.Background()); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	stmtErr := closeStmt(&s.lookupSessionStmt)
	return errors.Join(stmtErr, s.db.Close())
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Driver returns the database/sql driver name in use.
func (s *Store) Driver() string {
	return s.dialect.driver
}

func (s *Store) prepareStatements(ctx context.Context) error {
	var err error
	if s.lookupSessionStmt, err = s.db.PrepareContext(ctx, s.dialect.rebind(lookupSessionQuery)); err != nil {
		return fmt.Errorf("prepare lookup session query: %w", err)
	}
	return nil
}

func closeStmt(stmt **sql.Stmt) error {
	if stmt == nil || *stmt == nil {
		return nil
	}
	err := (*stmt).Close()
	*stmt = nil
	return err
}

// Migrate creates the credential table and index if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.ddl); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func isPostgresDSN(dsn string) bool {
	dsn = strings.ToLower(strings.TrimSpace(dsn))
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}
