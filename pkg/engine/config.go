package engine

import (
	"fmt"
	"math/bits"

	"github.com/hed1ad/wavealarm/pkg/distance"
	"github.com/hed1ad/wavealarm/pkg/matcher"
	"github.com/hed1ad/wavealarm/pkg/wavelet"
)

// Config holds every validated, immutable parameter the engine runs with.
// It corresponds one-to-one with the CLI flags in cmd/wavealarm.
type Config struct {
	SampleEach int

	InitialAvgDiff        float64
	NAmendAvgDiff         int
	NumberOfPointsToAlarm int
	MultiplicatorToDetect float64
	WaitStateUsec         int64

	FingerprintLength int
	WaveletOrder      wavelet.Order
	DistanceType      distance.Mode

	PosFrom, PosTo int
	NegFrom, NegTo int
	PosMax, NegMax float64

	MatchLogic   matcher.Policy
	UseDiffValue bool

	GenerateFingerprints  GenerateMode
	GenPatternHourLimit   int
	MatchDistanceToOutput bool

	SkipIfContains        string
	FingerprintsDirectory string

	DebugLevel int
}

// GenerateMode selects whether, and how, fingerprint files get written for
// completed windows.
type GenerateMode int

const (
	// GenerateNone never writes fingerprint files.
	GenerateNone GenerateMode = 0
	// GenerateAll writes a fingerprint file for every completed window.
	GenerateAll GenerateMode = 1
	// GenerateUnmatchedOnly writes a fingerprint file only for windows that
	// did not produce a final match, useful for harvesting new exemplars.
	GenerateUnmatchedOnly GenerateMode = 2
)

// Warning describes a non-fatal coercion applied during validation.
type Warning string

// Validate checks every field against spec.md §3's domains, coercing
// FingerprintLength to the largest power of two not exceeding the supplied
// value and clamping the *_to indices to FingerprintLength-1. It returns the
// (possibly coerced) config, any warnings produced, and the first hard
// validation failure encountered.
func (c Config) Validate() (Config, []Warning, error) {
	var warnings []Warning

	if c.SampleEach < 1 {
		return Config{}, nil, fmt.Errorf("engine: sample_each must be >= 1, got %d", c.SampleEach)
	}
	if c.InitialAvgDiff <= 0 {
		return Config{}, nil, fmt.Errorf("engine: initial_avg_diff must be > 0, got %g", c.InitialAvgDiff)
	}
	if c.NAmendAvgDiff < 1 {
		return Config{}, nil, fmt.Errorf("engine: n_amend_avgdiff must be >= 1, got %d", c.NAmendAvgDiff)
	}
	if c.NumberOfPointsToAlarm < 1 {
		return Config{}, nil, fmt.Errorf("engine: number_of_points_to_alarm must be >= 1, got %d", c.NumberOfPointsToAlarm)
	}
	if c.MultiplicatorToDetect <= 0 {
		return Config{}, nil, fmt.Errorf("engine: multiplicator_to_detect must be > 0, got %g", c.MultiplicatorToDetect)
	}
	if c.WaitStateUsec < 0 {
		return Config{}, nil, fmt.Errorf("engine: wait_state_usec must be >= 0, got %d", c.WaitStateUsec)
	}

	if c.FingerprintLength < 8 {
		return Config{}, nil, fmt.Errorf("engine: fingerprint_length must be >= 8, got %d", c.FingerprintLength)
	}
	if pow := largestPowerOfTwoAtMost(c.FingerprintLength); pow != c.FingerprintLength {
		warnings = append(warnings, Warning(fmt.Sprintf("fingerprint_length %d coerced to %d (largest power of two not exceeding it)", c.FingerprintLength, pow)))
		c.FingerprintLength = pow
	}
	if !c.WaveletOrder.Valid() {
		return Config{}, nil, fmt.Errorf("engine: unsupported wavelet_function %d", c.WaveletOrder)
	}
	if c.DistanceType != distance.PerIndex && c.DistanceType != distance.DyadicBandAveraged {
		return Config{}, nil, fmt.Errorf("engine: distance_calculation_type must be 1 or 2, got %d", c.DistanceType)
	}

	c.PosFrom, c.PosTo, warnings = clampRange(c.PosFrom, c.PosTo, c.FingerprintLength, "fingerprint_match_pos", warnings)
	c.NegFrom, c.NegTo, warnings = clampRange(c.NegFrom, c.NegTo, c.FingerprintLength, "fingerprint_match_neg", warnings)

	if c.PosMax < 0 || c.PosMax > 1 {
		return Config{}, nil, fmt.Errorf("engine: matching_distance_pos_max must be in [0,1], got %g", c.PosMax)
	}
	if c.NegMax < 0 || c.NegMax > 1 {
		return Config{}, nil, fmt.Errorf("engine: matching_distance_neg_max must be in [0,1], got %g", c.NegMax)
	}

	if c.MatchLogic < matcher.PolicyAlwaysMatch || c.MatchLogic > matcher.PolicyPositivesAll {
		return Config{}, nil, fmt.Errorf("engine: matches_evaluation_logic must be 0..4, got %d", c.MatchLogic)
	}
	if c.GenerateFingerprints < GenerateNone || c.GenerateFingerprints > GenerateUnmatchedOnly {
		return Config{}, nil, fmt.Errorf("engine: generate_fingerprints must be 0,1,2, got %d", c.GenerateFingerprints)
	}
	if c.GenPatternHourLimit < 0 {
		return Config{}, nil, fmt.Errorf("engine: genpattern_hour_limit must be >= 0, got %d", c.GenPatternHourLimit)
	}
	if c.FingerprintsDirectory == "" {
		return Config{}, nil, fmt.Errorf("engine: fingerprints_directory must be set")
	}
	if c.DebugLevel < 0 || c.DebugLevel > 2 {
		return Config{}, nil, fmt.Errorf("engine: debug_level must be 0,1,2, got %d", c.DebugLevel)
	}

	return c, warnings, nil
}

func clampRange(from, to, length int, label string, warnings []Warning) (int, int, []Warning) {
	if to > length-1 {
		warnings = append(warnings, Warning(fmt.Sprintf("%s_to %d clamped to %d", label, to, length-1)))
		to = length - 1
	}
	if from < 0 {
		from = 0
	}
	if from > to {
		from = to
	}
	return from, to, warnings
}

// largestPowerOfTwoAtMost returns the largest power of two not exceeding n.
func largestPowerOfTwoAtMost(n int) int {
	if n < 1 {
		return 1
	}
	return 1 << (bits.Len(uint(n)) - 1)
}
