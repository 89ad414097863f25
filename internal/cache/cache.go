// Package cache stores raw puzzle inputs keyed by (year, day).
//
// Entries are never invalidated: upstream inputs are immutable per user
// and day, so once written a record stays valid.
package cache

import (
	"context"
	"fmt"

	"github.com/koltyakov/aocd/internal/domain"
)

// Cache is the input cache contract used by the resolution pipeline.
//
// Get never fails: a missing or unreadable record is a miss. Put is best
// effort; on failure no partial record may remain visible to Get.
type Cache interface {
	Get(ctx context.Context, key domain.PuzzleKey) (string, bool)
	Put(ctx context.Context, key domain.PuzzleKey, text string) error
}

// FileName returns the deterministic file name for key.
func FileName(key domain.PuzzleKey) string {
	return fmt.Sprintf("input_%d_%d.txt", key.Year, key.Day)
}
