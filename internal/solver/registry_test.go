package solver

import (
	"errors"
	"testing"

	"github.com/koltyakov/aocd/internal/domain"
)

func TestResolveRegistered(t *testing.T) {
	t.Parallel()

	r := New()
	r.Register(domain.PuzzleKey{Year: 2023, Day: 1}, func(in string) string { return "got:" + in })

	fn, err := r.Resolve(domain.PuzzleKey{Year: 2023, Day: 1})
	if err != nil {
		t.Fatal(err)
	}
	if got := fn("x"); got != "got:x" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestResolveUnknownIsUnsupported(t *testing.T) {
	t.Parallel()

	r := New()
	if _, err := r.Resolve(domain.PuzzleKey{Year: 1900, Day: 1}); !errors.Is(err, domain.ErrUnsupportedPuzzle) {
		t.Fatalf("expected ErrUnsupportedPuzzle, got %v", err)
	}

	var nilRegistry *Registry
	if _, err := nilRegistry.Resolve(domain.PuzzleKey{Year: 2023, Day: 1}); !errors.Is(err, domain.ErrUnsupportedPuzzle) {
		t.Fatalf("expected nil registry to report unsupported, got %v", err)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	t.Parallel()

	r := New()
	key := domain.PuzzleKey{Year: 2022, Day: 1}
	r.Register(key, func(string) string { return "" })

	defer func() {
		if recover() == nil {
			t.Fatal("expected duplicate registration to panic")
		}
	}()
	r.Register(key, func(string) string { return "" })
}

func TestKeysSorted(t *testing.T) {
	t.Parallel()

	r := New()
	noop := func(string) string { return "" }
	r.Register(domain.PuzzleKey{Year: 2023, Day: 2}, noop)
	r.Register(domain.PuzzleKey{Year: 2022, Day: 5}, noop)
	r.Register(domain.PuzzleKey{Year: 2023, Day: 1}, noop)

	got := r.Keys()
	want := []domain.PuzzleKey{{Year: 2022, Day: 5}, {Year: 2023, Day: 1}, {Year: 2023, Day: 2}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
