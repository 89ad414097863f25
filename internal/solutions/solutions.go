// Package solutions holds the compiled-in puzzle solvers.
package solutions

import (
	"github.com/koltyakov/aocd/internal/domain"
	"github.com/koltyakov/aocd/internal/solver"
)

// Registry returns a registry populated with every bundled solver.
func Registry() *solver.Registry {
	r := solver.New()
	Register(r)
	return r
}

// Register adds every bundled solver to r.
func Register(r *solver.Registry) {
	r.Register(domain.PuzzleKey{Year: 2015, Day: 1}, notQuiteLisp)
	r.Register(domain.PuzzleKey{Year: 2022, Day: 1}, calorieCounting)
	r.Register(domain.PuzzleKey{Year: 2023, Day: 1}, trebuchet)
}
