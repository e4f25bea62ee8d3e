// Command wavealarm reads a timestamped numeric stream from stdin, detects
// excursions against an adaptive noise floor, and classifies the captured
// windows against a fingerprint bank, writing one output record per sample
// to stdout.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hed1ad/wavealarm/pkg/bank"
	"github.com/hed1ad/wavealarm/pkg/distance"
	"github.com/hed1ad/wavealarm/pkg/engine"
	"github.com/hed1ad/wavealarm/pkg/logging"
	"github.com/hed1ad/wavealarm/pkg/matcher"
	"github.com/hed1ad/wavealarm/pkg/wavelet"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// flags mirrors engine.Config one field at a time so cobra can bind
// directly into plain Go types before the final domain conversion.
type flags struct {
	sampleEach      int
	initAvg         float64
	nAmend          int
	pointsAlarm     int
	multiplicator   float64
	waitUsec        int64
	fpLength        int
	waveletOrd      int
	distType        int
	posFrom, posTo  int
	negFrom, negTo  int
	posMax, negMax  float64
	matchLogic      int
	useDiff         bool
	generate        int
	hourLimit       int
	matchToOutput   bool
	skipIfContains  string
	fingerprintsDir string
	debugLevel      int
}

func newRootCommand() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "wavealarm",
		Short: "Streaming wavelet-fingerprint anomaly detector",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(f)
		},
	}

	fl := cmd.Flags()
	fl.IntVar(&f.sampleEach, "sample-each", 1, "keep every S-th sample")
	fl.Float64Var(&f.initAvg, "initial-avg-diff", 1, "seed for the noise floor")
	fl.IntVar(&f.nAmend, "n-amend-avgdiff", 500, "noise floor EMA window")
	fl.IntVar(&f.pointsAlarm, "points-to-alarm", 3, "threshold run-length to raise an alarm")
	fl.Float64Var(&f.multiplicator, "multiplicator", 2, "threshold factor applied to the noise floor")
	fl.Int64Var(&f.waitUsec, "wait-usec", 1_000_000, "post-alarm cool-down, microseconds")
	fl.IntVar(&f.fpLength, "fingerprint-length", 64, "window length (coerced to a power of two)")
	fl.IntVar(&f.waveletOrd, "wavelet", 4, "Daubechies order: 2,4,6,...,20")
	fl.IntVar(&f.distType, "distance-type", 1, "distance mode: 1=per-index, 2=dyadic-band-averaged")
	fl.IntVar(&f.posFrom, "pos-from", 0, "positive-bank comparison range start")
	fl.IntVar(&f.posTo, "pos-to", 63, "positive-bank comparison range end")
	fl.IntVar(&f.negFrom, "neg-from", 0, "negative-bank comparison range start")
	fl.IntVar(&f.negTo, "neg-to", 63, "negative-bank comparison range end")
	fl.Float64Var(&f.posMax, "pos-max", 0.3, "accept threshold against the positive bank")
	fl.Float64Var(&f.negMax, "neg-max", 0.3, "accept threshold against the negative bank")
	fl.IntVar(&f.matchLogic, "match-logic", 0, "evaluation policy R: 0..4")
	fl.BoolVar(&f.useDiff, "use-diff", false, "carry first-difference values in the window instead of raw")
	fl.IntVar(&f.generate, "generate", 0, "fingerprint generation: 0=off,1=all,2=unmatched-only")
	fl.IntVar(&f.hourLimit, "genpattern-hour-limit", 0, "generated fingerprints per rolling hour (0=unlimited)")
	fl.BoolVar(&f.matchToOutput, "match-to-output", false, "emit matchdistance_out instead of contivalue as outputvalue")
	fl.StringVar(&f.skipIfContains, "skip-if-contains", "", "drop input lines containing this substring")
	fl.StringVar(&f.fingerprintsDir, "fingerprints-dir", ".", "bank directory, also used for generated fingerprints")
	fl.IntVar(&f.debugLevel, "debug-level", 0, "0=silent,1=info,2=per-line debug trace")

	return cmd
}

func run(f *flags) error {
	cfg := engine.Config{
		SampleEach:            f.sampleEach,
		InitialAvgDiff:        f.initAvg,
		NAmendAvgDiff:         f.nAmend,
		NumberOfPointsToAlarm: f.pointsAlarm,
		MultiplicatorToDetect: f.multiplicator,
		WaitStateUsec:         f.waitUsec,
		FingerprintLength:     f.fpLength,
		WaveletOrder:          wavelet.Order(f.waveletOrd),
		DistanceType:          distance.Mode(f.distType),
		PosFrom:               f.posFrom,
		PosTo:                 f.posTo,
		NegFrom:               f.negFrom,
		NegTo:                 f.negTo,
		PosMax:                f.posMax,
		NegMax:                f.negMax,
		MatchLogic:            matcher.Policy(f.matchLogic),
		UseDiffValue:          f.useDiff,
		GenerateFingerprints:  engine.GenerateMode(f.generate),
		GenPatternHourLimit:   f.hourLimit,
		MatchDistanceToOutput: f.matchToOutput,
		SkipIfContains:        f.skipIfContains,
		FingerprintsDirectory: f.fingerprintsDir,
		DebugLevel:            f.debugLevel,
	}

	validated, warnings, err := cfg.Validate()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := logging.New(validated.DebugLevel, validated.FingerprintsDirectory)
	defer logger.Sync()

	for _, w := range warnings {
		logger.Sugar().Warn(w)
	}

	b, bankWarnings, err := bank.Load(validated.FingerprintsDirectory, validated.FingerprintLength)
	if err != nil {
		return fmt.Errorf("bank: %w", err)
	}
	for _, w := range bankWarnings {
		logger.Sugar().Warn(w)
	}

	eng, err := engine.New(validated, b, logger)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	return eng.Run(os.Stdin, os.Stdout)
}
