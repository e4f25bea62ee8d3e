package engine_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hed1ad/wavealarm/pkg/bank"
	"github.com/hed1ad/wavealarm/pkg/distance"
	"github.com/hed1ad/wavealarm/pkg/engine"
	"github.com/hed1ad/wavealarm/pkg/matcher"
	"github.com/hed1ad/wavealarm/pkg/wavelet"
)

func baseConfig() engine.Config {
	return engine.Config{
		SampleEach:            1,
		InitialAvgDiff:        10,
		NAmendAvgDiff:         500,
		NumberOfPointsToAlarm: 3,
		MultiplicatorToDetect: 2,
		WaitStateUsec:         1_000_000,
		FingerprintLength:     8,
		WaveletOrder:          wavelet.Order2,
		DistanceType:          distance.PerIndex,
		PosFrom:               0,
		PosTo:                 7,
		NegFrom:               0,
		NegTo:                 7,
		PosMax:                0.5,
		NegMax:                0.5,
		MatchLogic:            matcher.PolicyAlwaysMatch,
		UseDiffValue:          false,
		GenerateFingerprints:  engine.GenerateNone,
		GenPatternHourLimit:   0,
		MatchDistanceToOutput: false,
		FingerprintsDirectory: ".",
		DebugLevel:            0,
	}
}

func line(ts string, v float64) string {
	return ts + " ; " + strconv.FormatFloat(v, 'f', -1, 64)
}

func TestRunQuiescentStreamNeverAlarms(t *testing.T) {
	cfg := baseConfig()
	e, err := engine.New(cfg, bank.Empty(), nil)
	require.NoError(t, err)

	var lines []string
	for i := 0; i < 50; i++ {
		lines = append(lines, line("01-02-2026 00:00:0"+strconv.Itoa(i%10)+".000000", 1000))
	}
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	var out strings.Builder

	require.NoError(t, e.Run(in, &out))

	for _, rec := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		fields := strings.Split(rec, ";")
		require.Len(t, fields, 13)
		assert.Equal(t, "0", fields[6], "isalarm must stay 0 for a flat stream")
		assert.Equal(t, "0", fields[8], "patternid must stay 0 with no alarm raised")
	}
}

func TestRunPolicyZeroMatchesEveryCompletedWindow(t *testing.T) {
	cfg := baseConfig()
	cfg.MatchLogic = matcher.PolicyAlwaysMatch
	cfg.NumberOfPointsToAlarm = 1
	e, err := engine.New(cfg, bank.Empty(), nil)
	require.NoError(t, err)

	var lines []string
	lines = append(lines, line("01-02-2026 00:00:00.000000", 100))
	for i := 1; i <= 1+cfg.FingerprintLength+2; i++ {
		lines = append(lines, line("01-02-2026 00:00:0"+strconv.Itoa(i%10)+".000000", 1000))
	}
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	var out strings.Builder

	require.NoError(t, e.Run(in, &out))

	var sawMatch bool
	for _, rec := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		fields := strings.Split(rec, ";")
		if fields[9] == "1" {
			sawMatch = true
		}
	}
	assert.True(t, sawMatch, "R=0 must yield at least one ismatch=1 once a window completes")
}
