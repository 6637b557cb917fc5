// Package maze holds the value types and bookkeeping structures of the
// replanning controller: headings, turn tokens, grid positions, the learned
// path buffer and the visited-cell ledger used while repairing a route.
package maze

import (
	"fmt"
	"strings"
)

// Heading is an absolute compass direction, ordered clockwise.
type Heading uint8

const (
	North Heading = iota
	East
	South
	West
)

var headingNames = [4]string{"N", "E", "S", "W"}

func (h Heading) String() string {
	if int(h) < len(headingNames) {
		return headingNames[h]
	}
	return fmt.Sprintf("Heading(%d)", uint8(h))
}

// ParseHeading accepts N/E/S/W or the full direction name, case-insensitive.
func ParseHeading(s string) (Heading, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "n", "north":
		return North, nil
	case "e", "east":
		return East, nil
	case "s", "south":
		return South, nil
	case "w", "west":
		return West, nil
	}
	return North, fmt.Errorf("unknown heading %q", s)
}

// Turn is a relative instruction issued at an intersection.
type Turn uint8

const (
	Left Turn = iota
	Straight
	Right
	Back
)

// quarterTurns is the clockwise rotation of each token in 90 degree steps.
var quarterTurns = [4]int{Left: 3, Straight: 0, Right: 1, Back: 2}

// byQuarter maps a clockwise rotation back to its token.
var byQuarter = [4]Turn{Straight, Right, Back, Left}

var turnLetters = [4]byte{Left: 'L', Straight: 'S', Right: 'R', Back: 'B'}

func (t Turn) String() string {
	if int(t) < len(turnLetters) {
		return string(turnLetters[t])
	}
	return fmt.Sprintf("Turn(%d)", uint8(t))
}

// Angle is the clockwise rotation of t in degrees.
func (t Turn) Angle() int {
	return quarterTurns[t] * 90
}

// TurnFromAngle maps a multiple of 90 degrees to the token with that rotation.
func TurnFromAngle(deg int) Turn {
	q := (deg / 90) % 4
	if q < 0 {
		q += 4
	}
	return byQuarter[q]
}

// ParseTurn reads a single token letter.
func ParseTurn(r rune) (Turn, error) {
	switch r {
	case 'L', 'l':
		return Left, nil
	case 'S', 's':
		return Straight, nil
	case 'R', 'r':
		return Right, nil
	case 'B', 'b':
		return Back, nil
	}
	return Straight, fmt.Errorf("unknown turn token %q", r)
}

// ParseTurns reads a token string such as "SSLRB". Whitespace is ignored.
func ParseTurns(s string) ([]Turn, error) {
	turns := make([]Turn, 0, len(s))
	for i, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == ',' {
			continue
		}
		t, err := ParseTurn(r)
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}

// FormatTurns renders tokens as their letters.
func FormatTurns(turns []Turn) string {
	b := make([]byte, len(turns))
	for i, t := range turns {
		b[i] = turnLetters[t]
	}
	return string(b)
}

// Turn returns the heading after applying t.
func (h Heading) Turn(t Turn) Heading {
	return Heading((int(h) + quarterTurns[t]) % 4)
}

// Relative returns the token that rotates from to to.
func Relative(from, to Heading) Turn {
	return byQuarter[(int(to)-int(from)+4)%4]
}

// Compass tracks the vehicle's absolute heading.
type Compass struct {
	heading Heading
}

// NewCompass returns a compass facing h.
func NewCompass(h Heading) Compass {
	return Compass{heading: h}
}

// Heading returns the current heading.
func (c *Compass) Heading() Heading {
	return c.heading
}

// Apply rotates by t and returns the new heading.
func (c *Compass) Apply(t Turn) Heading {
	c.heading = c.heading.Turn(t)
	return c.heading
}
