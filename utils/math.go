package utils

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Min returns the smaller value between two numbers.
func Min[T constraints.Ordered](x, y T) T {
	if x < y {
		return x
	}
	return y
}

// Max returns the bigger value between two numbers.
func Max[T constraints.Ordered](x, y T) T {
	if x > y {
		return x
	}
	return y
}

// Abs returns the absolut value of x.
func Abs[T constraints.Signed | constraints.Float](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

// Clamp limits x to the [lo, hi] interval.
func Clamp[T constraints.Ordered](x, lo, hi T) T {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Saturate8 rounds v to the nearest integer (ties to even) and clamps it to the uint8 range.
func Saturate8[T constraints.Integer | constraints.Float](v T) uint8 {
	f := math.RoundToEven(float64(v))
	return uint8(Clamp(f, 0, 255))
}

// Replicate maps an out of range index to the nearest edge index (aaa|abcd|ddd).
func Replicate(i, n int) int {
	return Clamp(i, 0, n-1)
}

// Reflect101 mirrors an out of range index without repeating the edge (cb|abcd|cb).
func Reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}
	return i
}
