package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/koltyakov/aocd/internal/domain"
)

// InsertSession stores a new credential for username. Existing credentials
// for the same username are kept.
func (s *Store) InsertSession(ctx context.Context, username, value string) (domain.SessionCredential, error) {
	id, err := newID("s")
	if err != nil {
		return domain.SessionCredential{}, err
	}
	c := domain.SessionCredential{
		ID:        id,
		Username:  username,
		Value:     value,
		CreatedAt: time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx, s.dialect.rebind(`
INSERT INTO session_cookies(id, username, val, created_at)
VALUES(?, ?, ?, ?)`), c.ID, c.Username, c.Value, c.CreatedAt)
	return c, err
}

// LookupSession returns one stored credential value for username. When
// several exist, which one is returned is unspecified.
func (s *Store) LookupSession(ctx context.Context, username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", domain.ErrCredentialNotFound
	}
	var val string
	var err error
	if stmt := s.lookupSessionStmt; stmt != nil {
		err = stmt.QueryRowContext(ctx, username).Scan(&val)
	} else {
		err = s.db.QueryRowContext(ctx, s.dialect.rebind(lookupSessionQuery), username).Scan(&val)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrCredentialNotFound
	}
	return val, err
}

// ListSessions returns all credentials stored for username, newest first.
func (s *Store) ListSessions(ctx context.Context, username string) ([]domain.SessionCredential, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(`
SELECT id, username, val, created_at
FROM session_cookies
WHERE username = ?
ORDER BY created_at DESC, id DESC`), username)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []domain.SessionCredential
	for rows.Next() {
		var c domain.SessionCredential
		if err := rows.Scan(&c.ID, &c.Username, &c.Value, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
