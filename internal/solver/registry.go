// Package solver maps puzzle keys to pure solver functions.
package solver

import (
	"fmt"
	"sort"

	"github.com/koltyakov/aocd/internal/domain"
)

// Func transforms the full puzzle input into an answer. It must not
// perform I/O.
type Func func(input string) string

// Registry is a static (year, day) -> Func table. It is populated at
// startup and only read afterwards, so lookups need no locking.
type Registry struct {
	funcs map[domain.PuzzleKey]Func
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{funcs: make(map[domain.PuzzleKey]Func)}
}

// Register adds fn under key. Registering the same key twice is a
// programming error and panics.
func (r *Registry) Register(key domain.PuzzleKey, fn Func) {
	if fn == nil {
		panic(fmt.Sprintf("solver: nil func for %s", key))
	}
	if _, dup := r.funcs[key]; dup {
		panic(fmt.Sprintf("solver: duplicate registration for %s", key))
	}
	r.funcs[key] = fn
}

// Resolve returns the solver for key or [domain.ErrUnsupportedPuzzle].
func (r *Registry) Resolve(key domain.PuzzleKey) (Func, error) {
	if r != nil {
		if fn, ok := r.funcs[key]; ok {
			return fn, nil
		}
	}
	return nil, domain.ErrUnsupportedPuzzle
}

// Keys lists registered keys ordered by year, then day.
func (r *Registry) Keys() []domain.PuzzleKey {
	if r == nil {
		return nil
	}
	keys := make([]domain.PuzzleKey, 0, len(r.funcs))
	for k := range r.funcs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Year != keys[j].Year {
			return keys[i].Year < keys[j].Year
		}
		return keys[i].Day < keys[j].Day
	})
	return keys
}
