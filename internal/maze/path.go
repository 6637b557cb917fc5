package maze

import (
	"errors"
	"fmt"
)

// ErrCapacityExceeded means the maze does not fit the configured bound.
var ErrCapacityExceeded = errors.New("maze: capacity exceeded")

// Path is the bounded turn sequence of the best known route to the goal.
type Path struct {
	turns []Turn
	limit int
}

// NewPath returns an empty path holding at most limit tokens.
func NewPath(limit int) *Path {
	return &Path{turns: make([]Turn, 0, limit), limit: limit}
}

// PathFrom returns a path preloaded with turns.
func PathFrom(turns []Turn, limit int) (*Path, error) {
	if len(turns) > limit {
		return nil, fmt.Errorf("load %d turns into path of %d: %w", len(turns), limit, ErrCapacityExceeded)
	}
	p := NewPath(limit)
	p.turns = append(p.turns, turns...)
	return p, nil
}

// Len returns the number of tokens.
func (p *Path) Len() int { return len(p.turns) }

// Cap returns the configured maximum length.
func (p *Path) Cap() int { return p.limit }

// At returns the token at i.
func (p *Path) At(i int) Turn { return p.turns[i] }

// Turns returns a copy of the tokens.
func (p *Path) Turns() []Turn {
	out := make([]Turn, len(p.turns))
	copy(out, p.turns)
	return out
}

// Tail returns a copy of the tokens from i to the end.
func (p *Path) Tail(i int) []Turn {
	if i >= len(p.turns) {
		return nil
	}
	out := make([]Turn, len(p.turns)-i)
	copy(out, p.turns[i:])
	return out
}

func (p *Path) String() string {
	return FormatTurns(p.turns)
}

// Append adds t and returns the new length. A full path is left unchanged.
func (p *Path) Append(t Turn) (int, error) {
	if len(p.turns) >= p.limit {
		return len(p.turns), ErrCapacityExceeded
	}
	p.turns = append(p.turns, t)
	return len(p.turns), nil
}

// Extend appends all of ts or none of them.
func (p *Path) Extend(ts []Turn) error {
	if len(p.turns)+len(ts) > p.limit {
		return ErrCapacityExceeded
	}
	p.turns = append(p.turns, ts...)
	return nil
}

// Truncate discards every token beyond n.
func (p *Path) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(p.turns) {
		p.turns = p.turns[:n]
	}
}

// Simplify folds a just-finished dead-end excursion, the last three tokens
// with a Back in the middle, into the single equivalent turn. It reports
// whether the path changed.
func (p *Path) Simplify() bool {
	n := len(p.turns)
	if n < 3 || p.turns[n-2] != Back {
		return false
	}

	total := 0
	for i := 1; i <= 3; i++ {
		total += p.turns[n-i].Angle()
	}
	p.turns[n-3] = TurnFromAngle(total % 360)
	p.turns = p.turns[:n-2]
	return true
}

// Compact re-runs Simplify over the whole path as if each token had just
// been appended, and returns how many tokens were removed.
func (p *Path) Compact() int {
	before := len(p.turns)
	src := p.Turns()
	p.turns = p.turns[:0]
	for _, t := range src {
		p.turns = append(p.turns, t)
		p.Simplify()
	}
	return before - len(p.turns)
}
