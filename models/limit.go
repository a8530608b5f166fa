package models

// Limit is an optional ceiling on a counted resource. The zero value is
// unlimited. Configuration surfaces carry plain ints where 0 means "no limit";
// NewLimit converts that sentinel so the rest of the code never has to
// interpret a raw zero.
type Limit struct {
	n       int
	bounded bool
}

// NewLimit creates a Limit from a configuration value. Values <= 0 mean
// unlimited.
func NewLimit(n int) Limit {
	if n <= 0 {
		return Limit{}
	}
	return Limit{n: n, bounded: true}
}

// Unlimited returns a Limit with no ceiling.
func Unlimited() Limit {
	return Limit{}
}

// Bounded returns the ceiling and whether one is set.
func (l Limit) Bounded() (int, bool) {
	return l.n, l.bounded
}

// Reached reports whether reserving one more unit on top of count would
// exceed the ceiling. Always false for an unlimited Limit.
func (l Limit) Reached(count int) bool {
	return l.bounded && count >= l.n
}

// Remaining returns the units left under the ceiling given the current count,
// floored at zero. Returns -1 for an unlimited Limit.
func (l Limit) Remaining(count int) int {
	if !l.bounded {
		return -1
	}
	if count >= l.n {
		return 0
	}
	return l.n - count
}
