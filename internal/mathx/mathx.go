// Package mathx holds the small integer helpers shared by the LED core,
// the sysfs backends and the display backlight.
package mathx

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi]. If lo > hi, the bounds are swapped.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Abs for signed integers.
func Abs[T constraints.Signed](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

// CeilDiv returns ceil(a/b) for non-negative a and positive b; 0 when b is 0.
func CeilDiv[T constraints.Integer](a, b T) T {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

// GCD returns the greatest common divisor of |a| and |b|.
// GCD(0, 0) is 1 so the result is always safe to divide by.
func GCD(a, b int) int {
	a, b = Abs(a), Abs(b)
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

// RoundUp rounds val up to the next multiple of rng.
func RoundUp(val, rng int) int {
	if rng <= 0 {
		return val
	}
	if rem := val % rng; rem != 0 {
		val += rng - rem
	}
	return val
}

// Trans maps v from [lo1, hi1] onto [lo2, hi2] with round-half-up integer
// arithmetic and limits the result to the output range. The upper bound is
// applied last, so an empty range (hi2 < lo2) yields hi2.
func Trans(v, lo1, hi1, lo2, hi2 int) int {
	d1 := hi1 - lo1
	d2 := hi2 - lo2
	if d1 == 0 {
		return min(lo2, hi2)
	}
	res := lo2 + (d2*(v-lo1)+d1/2)/d1
	if res < lo2 {
		res = lo2
	}
	if res > hi2 {
		res = hi2
	}
	return res
}

// ScaleValue maps a logical 0..255 intensity onto 0..maxValue.
// Zero stays zero and, for maxValue > 0, any positive input yields at least 1.
// A zero maxValue turns everything off.
func ScaleValue(in, maxValue int) int {
	if in <= 0 {
		return 0
	}
	return Trans(in, 1, 255, 1, maxValue)
}
