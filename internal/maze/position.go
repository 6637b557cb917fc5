package maze

import "fmt"

// Position is an integer grid coordinate relative to the start intersection.
// North is +Y and East is +X.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Add returns p moved by d.
func (p Position) Add(d Position) Position {
	return Position{X: p.X + d.X, Y: p.Y + d.Y}
}

// Unit returns the one-cell step when facing h.
func Unit(h Heading) Position {
	return moveTable[h][Straight]
}

// moveTable[h][t] is the one-cell step taken after turning t while facing h.
var moveTable = [4][4]Position{
	North: {
		Left:     {X: -1, Y: 0},
		Straight: {X: 0, Y: 1},
		Right:    {X: 1, Y: 0},
		Back:     {X: 0, Y: -1},
	},
	East: {
		Left:     {X: 0, Y: 1},
		Straight: {X: 1, Y: 0},
		Right:    {X: 0, Y: -1},
		Back:     {X: -1, Y: 0},
	},
	South: {
		Left:     {X: 1, Y: 0},
		Straight: {X: 0, Y: -1},
		Right:    {X: -1, Y: 0},
		Back:     {X: 0, Y: 1},
	},
	West: {
		Left:     {X: 0, Y: -1},
		Straight: {X: -1, Y: 0},
		Right:    {X: 0, Y: 1},
		Back:     {X: 1, Y: 0},
	},
}

// Delta returns the step for turning t while facing h, then advancing one cell.
func Delta(h Heading, t Turn) Position {
	return moveTable[h][t]
}

// Odometer tracks the vehicle's grid position.
type Odometer struct {
	pos Position
}

// NewOdometer returns an odometer at p.
func NewOdometer(p Position) Odometer {
	return Odometer{pos: p}
}

// Position returns the current position.
func (o *Odometer) Position() Position {
	return o.pos
}

// Apply advances one cell for token t taken while facing h (the heading
// before the turn) and returns the new position.
func (o *Odometer) Apply(h Heading, t Turn) Position {
	o.pos = o.pos.Add(Delta(h, t))
	return o.pos
}
