// Package cache provides the two-slot value cache shared by everything that
// memoizes a function of a box configuration.
//
// Monte Carlo walkers look at exactly two configurations at a time: the
// accepted one and a trial. Keeping the values for the two most recent
// configuration IDs is enough to make a rejected trial free.
package cache

// Outcome reports how Get produced its value.
type Outcome int

const (
	// Miss means the value was computed.
	Miss Outcome = iota
	// Hit means the current slot matched.
	Hit
	// Revert means the previous slot matched and was promoted.
	Revert
)

func (o Outcome) String() string {
	switch o {
	case Hit:
		return "hit"
	case Revert:
		return "revert"
	default:
		return "miss"
	}
}

type slot[T any] struct {
	id    int64
	valid bool
	v     T
}

// Versioned holds the values for the current and previous configuration IDs.
// The zero value is empty and ready to use. Buffers held in T are reused:
// compute receives the storage of the evicted slot.
type Versioned[T any] struct {
	cur, prev slot[T]
}

// Get returns the value for id, calling compute only when neither slot holds
// it. On a miss the current slot becomes the previous one and compute fills
// the storage of the slot being evicted.
func (c *Versioned[T]) Get(id int64, compute func(dst *T)) (T, Outcome) {
	if c.cur.valid && c.cur.id == id {
		return c.cur.v, Hit
	}
	if c.prev.valid && c.prev.id == id {
		c.cur, c.prev = c.prev, c.cur
		return c.cur.v, Revert
	}
	c.cur, c.prev = c.prev, c.cur
	compute(&c.cur.v)
	c.cur.id = id
	c.cur.valid = true
	return c.cur.v, Miss
}

// Invalidate forgets both IDs but keeps the slot storage.
func (c *Versioned[T]) Invalidate() {
	c.cur.valid = false
	c.prev.valid = false
}
