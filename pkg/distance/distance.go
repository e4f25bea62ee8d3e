// Package distance implements the normalized Euclidean distance kernel used
// to compare a captured fingerprint against the positive/negative bank.
package distance

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mode selects how the distance is accumulated over the index range.
type Mode int

const (
	// PerIndex compares v1[i] against v2[i] for every i in [from, to].
	PerIndex Mode = 1
	// DyadicBandAveraged compares the per-band arithmetic means of every
	// dyadic level fully contained in [from, to].
	DyadicBandAveraged Mode = 2
)

// Distance returns the normalized Euclidean distance between v1 and v2 over
// [from, to], clamped to [0, 1]. length is the configured fingerprint
// length used to size the dyadic bands; v1 and v2 only need to cover
// [from, to] — a bank fingerprint shorter or longer than length is
// accepted, matching entries are simply compared over the range they
// share. dist(v, v, ...) == 0 for any v, and the measure is symmetric.
func Distance(v1, v2 []float64, from, to, length int, mode Mode) (float64, error) {
	if from < 0 || to >= length || from > to {
		return 0, fmt.Errorf("distance: invalid range [%d,%d] for length %d", from, to, length)
	}
	if len(v1) < to+1 || len(v2) < to+1 {
		return 0, fmt.Errorf("distance: vectors too short for range [%d,%d]: got %d and %d", from, to, len(v1), len(v2))
	}

	var num, den float64

	switch mode {
	case PerIndex:
		num, den = perIndexSums(v1, v2, from, to)
	case DyadicBandAveraged:
		num, den = dyadicBandSums(v1, v2, from, to, length)
	default:
		return 0, fmt.Errorf("distance: unknown mode %d", mode)
	}

	if den == 0 {
		return 0, nil
	}

	d := num / den
	return math.Min(1, math.Max(0, d)), nil
}

// perIndexSums computes the mode-1 numerator/denominator using gonum's
// vector primitives over the [from,to] slice.
func perIndexSums(v1, v2 []float64, from, to int) (num, den float64) {
	width := to - from + 1
	diff := make([]float64, width)
	floats.SubTo(diff, v1[from:to+1], v2[from:to+1])

	num = floats.Dot(diff, diff)
	den = floats.Dot(v1[from:to+1], v1[from:to+1]) + floats.Dot(v2[from:to+1], v2[from:to+1])
	return num, den
}

// dyadicBandSums computes the mode-2 numerator/denominator: for every level
// i in [0, log2(length)], the band [ifrom,ito] is (i==0 ? [0,0] :
// [2^(i-1), 2^i - 1]); bands fully contained in [from,to] contribute their
// per-vector band means to the comparison.
func dyadicBandSums(v1, v2 []float64, from, to, length int) (num, den float64) {
	clength := int(math.Log2(float64(length)))

	var a1, a2 []float64
	for i := 0; i <= clength; i++ {
		ifrom, ito := 0, 0
		if i == 0 {
			ifrom, ito = 0, 0
		} else {
			ifrom = 1 << (i - 1)
			ito = (1 << i) - 1
		}

		if ifrom >= from && ito <= to {
			a1 = append(a1, stat.Mean(v1[ifrom:ito+1], nil))
			a2 = append(a2, stat.Mean(v2[ifrom:ito+1], nil))
		}
	}

	diff := make([]float64, len(a1))
	floats.SubTo(diff, a1, a2)
	num = floats.Dot(diff, diff)
	den = floats.Dot(a1, a1) + floats.Dot(a2, a2)
	return num, den
}
