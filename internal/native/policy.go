package native

import (
	"fmt"
	"math"
	"strings"
)

// OverflowPolicy selects what Increment does when the input is math.MaxInt32.
type OverflowPolicy int

const (
	// Wrap follows two's-complement arithmetic: MaxInt32 + 1 == MinInt32.
	Wrap OverflowPolicy = iota
	// Saturate clamps the result at MaxInt32.
	Saturate
	// Fault reports ErrOverflow.
	Fault
)

func (p OverflowPolicy) String() string {
	switch p {
	case Wrap:
		return "wrap"
	case Saturate:
		return "saturate"
	case Fault:
		return "fault"
	default:
		return fmt.Sprintf("OverflowPolicy(%d)", int(p))
	}
}

// ParseOverflowPolicy accepts the names returned by String, plus a few aliases.
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "wrap", "wraparound":
		return Wrap, nil
	case "saturate", "saturating", "clamp":
		return Saturate, nil
	case "fault", "error", "trap":
		return Fault, nil
	default:
		return Wrap, fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
	}
}

// Increment returns x+1 under the given policy.
func Increment(x int32, p OverflowPolicy) (int32, error) {
	if x != math.MaxInt32 {
		return x + 1, nil
	}

	switch p {
	case Wrap:
		return x + 1, nil
	case Saturate:
		return math.MaxInt32, nil
	case Fault:
		return 0, &Error{Op: "increment", Value: x, Err: ErrOverflow}
	default:
		return 0, &Error{Op: "increment", Value: x, Err: fmt.Errorf("%w: %d", ErrInvalidPolicy, int(p))}
	}
}
