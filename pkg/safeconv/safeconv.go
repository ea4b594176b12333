// Package safeconv provides checked integer conversions for sizes.
package safeconv

import (
	"errors"
	"fmt"
	"math"
)

// ErrOverflow indicates a value does not fit the target type.
var ErrOverflow = errors.New("safeconv: value out of range")

// Uint64ToInt64 converts v, failing when it exceeds math.MaxInt64.
func Uint64ToInt64(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %d", ErrOverflow, v)
	}

	return int64(v), nil
}

// MustUint64ToInt64 converts v, panics on overflow.
// Use only when overflow is logically impossible.
func MustUint64ToInt64(v uint64) int64 {
	if v > math.MaxInt64 {
		panic("safeconv: uint64 to int64 overflow")
	}

	return int64(v)
}

// ClampToUint64 converts v, mapping negative values to zero.
func ClampToUint64(v int64) uint64 {
	if v < 0 {
		return 0
	}

	return uint64(v)
}
