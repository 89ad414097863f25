package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

type dialect struct {
	driver string
	ddl    string
}

const sqliteDDL = `
CREATE TABLE IF NOT EXISTS session_cookies (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL,
	val TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_session_cookies_username ON session_cookies(username);
`

const postgresDDL = `
CREATE TABLE IF NOT EXISTS session_cookies (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL,
	val TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_session_cookies_username ON session_cookies(username);
`

var (
	sqliteDialect   = dialect{driver: "sqlite", ddl: sqliteDDL}
	postgresDialect = dialect{driver: "postgres", ddl: postgresDDL}
)

func detectDialect(dsn string) dialect {
	if isPostgresDSN(dsn) {
		return postgresDialect
	}
	return sqliteDialect
}

func (d dialect) open(dsn string) (*sql.DB, error) {
	if d.driver == postgresDialect.driver {
		return sql.Open(d.driver, strings.TrimSpace(dsn))
	}
	path := strings.TrimPrefix(strings.TrimSpace(dsn), "sqlite://")
	if err := ensureParentDir(path); err != nil {
		return nil, err
	}
	// Append per-connection PRAGMAs to the DSN so every pooled connection gets them.
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return sql.Open(d.driver, path+sep+"_pragma=synchronous(normal)")
}

// setup applies database-wide settings once after open.
func (d dialect) setup(db *sql.DB) error {
	if d.driver != sqliteDialect.driver {
		return nil
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("sqlite setup (%s): %w", pragma, err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $N for PostgreSQL.
func (d dialect) rebind(query string) string {
	if d.driver != postgresDialect.driver {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
