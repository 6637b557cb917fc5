package maze

// Classification is what the sensing layer reports at one intersection.
type Classification struct {
	Left     bool `json:"left"`
	Straight bool `json:"straight"`
	Right    bool `json:"right"`
	Goal     bool `json:"goal"`
}

// DeadEnd reports a classification with no exits.
func (c Classification) DeadEnd() bool {
	return !c.Left && !c.Straight && !c.Right
}

func (c Classification) String() string {
	b := []byte("---")
	if c.Left {
		b[0] = 'L'
	}
	if c.Straight {
		b[1] = 'S'
	}
	if c.Right {
		b[2] = 'R'
	}
	if c.Goal {
		return string(b) + "+G"
	}
	return string(b)
}

func (c Classification) flags() int {
	f := 0
	if c.Left {
		f |= 4
	}
	if c.Straight {
		f |= 2
	}
	if c.Right {
		f |= 1
	}
	return f
}

// wallFollow is the left-hand rule indexed by the L|S|R exit bits.
var wallFollow = [8]Turn{
	0: Back,
	1: Right,
	2: Straight,
	3: Straight,
	4: Left,
	5: Left,
	6: Left,
	7: Left,
}

// Choose picks a turn by the priority Left > Straight > Right > Back.
func Choose(c Classification) Turn {
	return wallFollow[c.flags()]
}

// Consistent reports whether t can be executed at an intersection
// classified as c. Back needs no exit.
func Consistent(t Turn, c Classification) bool {
	switch t {
	case Left:
		return c.Left
	case Straight:
		return c.Straight
	case Right:
		return c.Right
	}
	return true
}
