// Package matcher reduces a captured sample window to a wavelet fingerprint
// and evaluates it against the positive/negative bank under one of five
// match policies.
package matcher

import (
	"fmt"

	"github.com/hed1ad/wavealarm/pkg/bank"
	"github.com/hed1ad/wavealarm/pkg/distance"
	"github.com/hed1ad/wavealarm/pkg/wavelet"
)

// Policy selects how per-bank minimum distances combine into a match
// decision. R=2 and R=3 stop scanning the positive bank at the first hit;
// R=4 always scans every positive fingerprint, since matchpos_count is
// observable in the output.
type Policy int

const (
	PolicyAlwaysMatch          Policy = 0
	PolicyNegativesOnly        Policy = 1
	PolicyPositivesFirstHit    Policy = 2
	PolicyPositivesAndNegative Policy = 3
	PolicyPositivesAll         Policy = 4
)

// Range is an inclusive index window passed to the distance kernel.
type Range struct {
	From, To int
}

// Config bundles the matcher's static, validated parameters.
type Config struct {
	WaveletOrder wavelet.Order
	Length       int
	Mode         distance.Mode
	Policy       Policy

	PosRange Range
	NegRange Range
	PosMax   float64
	NegMax   float64
}

// Result carries every field the pipeline driver needs from a single
// matcher evaluation.
type Result struct {
	Coeffs   []float64
	IsMatch  bool
	// MatchDistanceOut is -1 when IsMatch is false.
	MatchDistanceOut float64
	Contivalue       float64

	MatchPosCount    int
	MatchNegCount    int
	MinPos           float64
	MinNeg           float64
	MatchTestPosName string
}

// Evaluate transforms window via the configured wavelet order and scores the
// result against bank under cfg.Policy.
func Evaluate(window []float64, b *bank.Bank, cfg Config) (Result, error) {
	tr, err := wavelet.New(cfg.WaveletOrder)
	if err != nil {
		return Result{}, fmt.Errorf("matcher: %w", err)
	}
	coeffs, err := tr.Transform(window)
	if err != nil {
		return Result{}, fmt.Errorf("matcher: %w", err)
	}

	res := Result{
		Coeffs:           coeffs,
		MatchDistanceOut: -1,
		Contivalue:       0,
		MinPos:           1,
		MinNeg:           1,
	}

	scanPos := func() error {
		for _, fp := range b.All() {
			if fp.Kind != bank.Positive {
				continue
			}
			d, err := distance.Distance(coeffs, fp.Coeffs, cfg.PosRange.From, cfg.PosRange.To, cfg.Length, cfg.Mode)
			if err != nil {
				return err
			}
			if d < res.MinPos {
				res.MinPos = d
			}
			if d <= cfg.PosMax {
				res.MatchPosCount++
				res.MatchTestPosName = fp.Name
				if cfg.Policy == PolicyPositivesFirstHit || cfg.Policy == PolicyPositivesAndNegative {
					break
				}
			}
		}
		return nil
	}

	scanNeg := func() error {
		for _, fp := range b.All() {
			if fp.Kind != bank.Negative {
				continue
			}
			d, err := distance.Distance(coeffs, fp.Coeffs, cfg.NegRange.From, cfg.NegRange.To, cfg.Length, cfg.Mode)
			if err != nil {
				return err
			}
			if d < res.MinNeg {
				res.MinNeg = d
			}
			if d <= cfg.NegMax {
				res.MatchNegCount++
			}
		}
		return nil
	}

	switch cfg.Policy {
	case PolicyAlwaysMatch:
		res.IsMatch = true
		res.Contivalue = 1
		return res, nil

	case PolicyNegativesOnly:
		if err := scanNeg(); err != nil {
			return Result{}, fmt.Errorf("matcher: %w", err)
		}
		res.IsMatch = res.MatchNegCount == 0
		res.Contivalue = res.MinNeg
		if res.IsMatch {
			res.MatchDistanceOut = res.MinNeg
		}

	case PolicyPositivesFirstHit:
		if err := scanPos(); err != nil {
			return Result{}, fmt.Errorf("matcher: %w", err)
		}
		res.IsMatch = res.MatchPosCount >= 1
		res.Contivalue = 1 - res.MinPos
		if res.IsMatch {
			res.MatchDistanceOut = res.MinPos
		}

	case PolicyPositivesAndNegative:
		if err := scanPos(); err != nil {
			return Result{}, fmt.Errorf("matcher: %w", err)
		}
		if err := scanNeg(); err != nil {
			return Result{}, fmt.Errorf("matcher: %w", err)
		}
		res.IsMatch = res.MatchNegCount == 0 && res.MatchPosCount >= 1
		m := res.MinPos
		if res.MinNeg < m {
			m = res.MinNeg
		}
		res.Contivalue = 1 - m
		if res.IsMatch {
			res.MatchDistanceOut = m
		}

	case PolicyPositivesAll:
		if err := scanPos(); err != nil {
			return Result{}, fmt.Errorf("matcher: %w", err)
		}
		res.IsMatch = res.MatchPosCount >= 1
		res.Contivalue = 1 - res.MinPos
		if res.IsMatch {
			res.MatchDistanceOut = res.MinPos
		}

	default:
		return Result{}, fmt.Errorf("matcher: unknown evaluation policy %d", cfg.Policy)
	}

	return res, nil
}
