// Package domain defines the core data types shared across the aocd
// server, store, cache, and resolution pipeline.
package domain

import (
	"fmt"
	"time"
)

// PuzzleKey identifies one puzzle input by event year and day.
type PuzzleKey struct {
	Year uint32
	Day  uint32
}

// Valid reports whether both components are non-zero.
func (k PuzzleKey) Valid() bool {
	return k.Year > 0 && k.Day > 0
}

func (k PuzzleKey) String() string {
	return fmt.Sprintf("%d/%d", k.Year, k.Day)
}

// SessionCredential is a stored upstream session cookie for a username.
// Several credentials may exist for the same username.
type SessionCredential struct {
	ID        string
	Username  string
	Value     string
	CreatedAt time.Time
}
