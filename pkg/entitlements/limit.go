package entitlements

import (
	"encoding/json"
	"fmt"
	"strconv"
)

const unlimitedLiteral = "unlimited"

// Limit is a quota that is either unbounded or a bounded count.
//
// The zero value is Bounded(0), so a forgotten field denies rather than
// grants.
type Limit struct {
	n         uint
	unbounded bool
}

// Unbounded returns a limit with no ceiling.
func Unbounded() Limit {
	return Limit{unbounded: true}
}

// Bounded returns a limit of exactly n.
func Bounded(n uint) Limit {
	return Limit{n: n}
}

// IsUnbounded reports whether the limit has no ceiling.
func (l Limit) IsUnbounded() bool {
	return l.unbounded
}

// Value returns the bounded count. ok is false for an unbounded limit.
func (l Limit) Value() (n uint, ok bool) {
	if l.unbounded {
		return 0, false
	}
	return l.n, true
}

// Allows reports whether the limit permits any use at all.
// A bounded limit of 0 is a hard deny.
func (l Limit) Allows() bool {
	return l.unbounded || l.n > 0
}

// Remaining returns what is left after used units. Unbounded stays
// unbounded; bounded saturates at zero.
func (l Limit) Remaining(used int64) Limit {
	if l.unbounded {
		return l
	}
	if used <= 0 {
		return l
	}
	if uint64(used) >= uint64(l.n) {
		return Bounded(0)
	}
	return Bounded(l.n - uint(used))
}

// Exhausted reports whether no units are left.
func (l Limit) Exhausted() bool {
	return !l.unbounded && l.n == 0
}

func (l Limit) String() string {
	if l.unbounded {
		return unlimitedLiteral
	}
	return strconv.FormatUint(uint64(l.n), 10)
}

// MarshalJSON encodes a bounded limit as a number and an unbounded one as
// the string "unlimited".
func (l Limit) MarshalJSON() ([]byte, error) {
	if l.unbounded {
		return json.Marshal(unlimitedLiteral)
	}
	return json.Marshal(l.n)
}

// UnmarshalJSON accepts a non-negative number, "unlimited", or null (unlimited).
func (l *Limit) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = Unbounded()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != unlimitedLiteral {
			return fmt.Errorf("invalid limit %q", s)
		}
		*l = Unbounded()
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid limit: %w", err)
	}
	if n < 0 {
		return fmt.Errorf("invalid limit %d: must not be negative", n)
	}
	*l = Bounded(uint(n))
	return nil
}
