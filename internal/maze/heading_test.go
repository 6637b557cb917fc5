package maze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allHeadings = []Heading{North, East, South, West}
var allTurns = []Turn{Left, Straight, Right, Back}

func TestHeadingTurn(t *testing.T) {
	tests := []struct {
		from Heading
		turn Turn
		want Heading
	}{
		{North, Straight, North},
		{North, Right, East},
		{North, Back, South},
		{North, Left, West},
		{East, Right, South},
		{East, Left, North},
		{South, Right, West},
		{South, Back, North},
		{West, Right, North},
		{West, Left, South},
		{West, Back, East},
	}

	for _, tt := range tests {
		c := NewCompass(tt.from)
		assert.Equal(t, tt.want, c.Apply(tt.turn), "%s turn %s", tt.from, tt.turn)
		assert.Equal(t, tt.want, c.Heading(), "compass after %s from %s", tt.turn, tt.from)
	}
}

func TestRelativeInvertsTurn(t *testing.T) {
	for _, h := range allHeadings {
		for _, tr := range allTurns {
			assert.Equal(t, tr, Relative(h, h.Turn(tr)), "Relative(%s, %s)", h, h.Turn(tr))
		}
	}
}

// The heading after a turn must point the same way as the step the odometer
// takes for that turn.
func TestRotationConsistency(t *testing.T) {
	for _, h := range allHeadings {
		for _, tr := range allTurns {
			assert.Equal(t, Unit(h.Turn(tr)), Delta(h, tr), "Delta(%s, %s)", h, tr)
		}
	}
}

func TestUnitVectors(t *testing.T) {
	want := map[Heading]Position{
		North: {0, 1},
		East:  {1, 0},
		South: {0, -1},
		West:  {-1, 0},
	}
	for h, p := range want {
		assert.Equal(t, p, Unit(h), "Unit(%s)", h)
	}
}

func TestOdometerApply(t *testing.T) {
	o := NewOdometer(Position{})
	c := NewCompass(North)

	steps := []struct {
		turn Turn
		want Position
	}{
		{Right, Position{1, 0}},
		{Straight, Position{2, 0}},
		{Left, Position{2, 1}},
		{Back, Position{2, 0}},
	}
	for _, s := range steps {
		got := o.Apply(c.Heading(), s.turn)
		c.Apply(s.turn)
		require.Equal(t, s.want, got, "after %s", s.turn)
	}
	assert.Equal(t, South, c.Heading())
}

func TestTurnAngles(t *testing.T) {
	tests := []struct {
		turn  Turn
		angle int
	}{
		{Straight, 0},
		{Right, 90},
		{Back, 180},
		{Left, 270},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.angle, tt.turn.Angle(), "%s.Angle()", tt.turn)
		assert.Equal(t, tt.turn, TurnFromAngle(tt.angle), "TurnFromAngle(%d)", tt.angle)
	}
	assert.Equal(t, Left, TurnFromAngle(-90))
}

func TestParseTurns(t *testing.T) {
	turns, err := ParseTurns("S sLr,B")
	require.NoError(t, err)
	assert.Equal(t, "SSLRB", FormatTurns(turns))

	_, err = ParseTurns("SX")
	assert.Error(t, err, "unknown token")
}

func TestParseHeading(t *testing.T) {
	tests := []struct {
		in   string
		want Heading
		ok   bool
	}{
		{"N", North, true},
		{"east", East, true},
		{" s ", South, true},
		{"West", West, true},
		{"up", North, false},
	}
	for _, tt := range tests {
		got, err := ParseHeading(tt.in)
		if !tt.ok {
			assert.Error(t, err, "ParseHeading(%q)", tt.in)
			continue
		}
		if assert.NoError(t, err, "ParseHeading(%q)", tt.in) {
			assert.Equal(t, tt.want, got, "ParseHeading(%q)", tt.in)
		}
	}
}

func TestChoose(t *testing.T) {
	tests := []struct {
		c    Classification
		want Turn
	}{
		{Classification{}, Back},
		{Classification{Right: true}, Right},
		{Classification{Straight: true}, Straight},
		{Classification{Straight: true, Right: true}, Straight},
		{Classification{Left: true}, Left},
		{Classification{Left: true, Right: true}, Left},
		{Classification{Left: true, Straight: true}, Left},
		{Classification{Left: true, Straight: true, Right: true}, Left},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Choose(tt.c), "Choose(%s)", tt.c)
	}
}

func TestConsistent(t *testing.T) {
	none := Classification{}
	for _, tr := range []Turn{Left, Straight, Right} {
		assert.False(t, Consistent(tr, none), "%s with a dead end", tr)
	}
	assert.True(t, Consistent(Back, none), "Back is always consistent")
	assert.True(t, Consistent(Right, Classification{Right: true}))
	assert.False(t, Consistent(Left, Classification{Straight: true, Right: true}))
}
