package domain

import "math"

func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// ClampSigned clamps to [-1,1], the range used for trust and sentiment.
func ClampSigned(v float64) float64 {
	return Clamp(v, -1, 1)
}
