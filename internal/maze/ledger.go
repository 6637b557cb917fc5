package maze

// Origin says how a ledger record came to exist.
type Origin uint8

const (
	// Stale records replay the abandoned part of the old route by dead
	// reckoning. Only these are splice candidates.
	Stale Origin = iota
	// Explored records are steps physically taken while repairing.
	Explored
)

func (o Origin) String() string {
	if o == Stale {
		return "stale"
	}
	return "explored"
}

// Record is one step of the ledger: the heading when leaving a cell, the
// turn taken there and the cell it leads to.
type Record struct {
	Heading  Heading  `json:"heading"`
	Turn     Turn     `json:"turn"`
	Position Position `json:"position"`
	Origin   Origin   `json:"origin"`
}

// Ledger logs the cells known during one repair episode.
type Ledger struct {
	records []Record
	stale   int
	limit   int
}

// NewLedger returns an empty ledger holding at most limit records.
func NewLedger(limit int) *Ledger {
	return &Ledger{limit: limit}
}

// Reset clears the ledger for a new repair episode.
func (l *Ledger) Reset() {
	l.records = l.records[:0]
	l.stale = 0
}

// Len returns the number of records of either origin.
func (l *Ledger) Len() int { return len(l.records) }

// StaleLen returns the number of stale records.
func (l *Ledger) StaleLen() int { return l.stale }

// At returns record i.
func (l *Ledger) At(i int) Record { return l.records[i] }

// Records returns a copy of every record.
func (l *Ledger) Records() []Record {
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// RecordSuffix dead-reckons suffix from pos while facing h and logs the cell
// reached after every token as a stale record. It must be called before any
// explored record of the episode.
func (l *Ledger) RecordSuffix(pos Position, h Heading, suffix []Turn) error {
	if len(l.records)+len(suffix) > l.limit {
		return ErrCapacityExceeded
	}
	for _, t := range suffix {
		pos = pos.Add(Delta(h, t))
		l.records = append(l.records, Record{Heading: h, Turn: t, Position: pos, Origin: Stale})
		h = h.Turn(t)
	}
	l.stale = len(l.records)
	return nil
}

// Explore logs a step actually taken during the repair.
func (l *Ledger) Explore(h Heading, t Turn, pos Position) error {
	if len(l.records) >= l.limit {
		return ErrCapacityExceeded
	}
	l.records = append(l.records, Record{Heading: h, Turn: t, Position: pos, Origin: Explored})
	return nil
}

// Match finds the stale record at pos. When the old route crossed pos more
// than once the furthest record wins.
func (l *Ledger) Match(pos Position) (int, bool) {
	for k := l.stale - 1; k >= 0; k-- {
		if l.records[k].Position == pos {
			return k, true
		}
	}
	return 0, false
}

// Continuation returns the part of the old route still ahead after arriving
// at stale record k's cell facing arrival. The first token is re-expressed
// against arrival so that the vehicle leaves the cell the way the old route
// did; the rest is copied unchanged. The result has StaleLen()-k-1 tokens.
func (l *Ledger) Continuation(k int, arrival Heading) []Turn {
	if k+1 >= l.stale {
		return nil
	}
	out := make([]Turn, 0, l.stale-k-1)
	next := l.records[k+1]
	out = append(out, Relative(arrival, next.Heading.Turn(next.Turn)))
	for _, r := range l.records[k+2 : l.stale] {
		out = append(out, r.Turn)
	}
	return out
}
