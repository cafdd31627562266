package rhythm

import (
	"fmt"
	"math/big"
)

// ParseFrac parses a corpus fraction cell ("3/4", "2", "0.5") into a big.Rat.
func ParseFrac(s string) (*big.Rat, error) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("invalid fraction %q", s)
	}
	return r, nil
}

// Frac builds a rational in place, for literals in code and tests.
func Frac(num, den int64) *big.Rat {
	return big.NewRat(num, den)
}

// FracStr renders a rational the way serialized pieces store it.
func FracStr(r *big.Rat) string {
	if r == nil {
		return "0"
	}
	return r.RatString()
}

// isMultiple reports whether b is an exact integer multiple of length.
func isMultiple(b, length *big.Rat) bool {
	q := new(big.Rat).Quo(b, length)
	return q.IsInt()
}
