// Package engine wires the detector, collector, matcher, bank, and
// optional ensemble corroboration scorer into the single-threaded
// per-sample pipeline driver described in spec.md §4.7.
package engine

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hed1ad/wavealarm/pkg/bank"
	"github.com/hed1ad/wavealarm/pkg/collector"
	"github.com/hed1ad/wavealarm/pkg/detector"
	"github.com/hed1ad/wavealarm/pkg/ensemble"
	"github.com/hed1ad/wavealarm/pkg/ensemble/iforest"
	"github.com/hed1ad/wavealarm/pkg/matcher"
	"github.com/hed1ad/wavealarm/pkg/sample"
	"github.com/hed1ad/wavealarm/pkg/streamio"
)

// Engine owns every piece of mutable per-process state: the detector, the
// collector, the fingerprint generation rate bucket, and the running line
// counter. One Engine is created per process and driven by Run.
type Engine struct {
	cfg    Config
	bank   *bank.Bank
	logger *zap.Logger

	det    *detector.State
	coll   *collector.State
	bucket rateBucket
	lineID int64

	ens ensemble.Detector
}

// New validates cfg, logs the resolved parameter banner, fits the optional
// ensemble corroboration scorer from bnk (if non-empty), and returns a
// ready-to-run Engine.
func New(cfg Config, bnk *bank.Bank, logger *zap.Logger) (*Engine, error) {
	cfg, warnings, err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, w := range warnings {
		logger.Warn(string(w))
	}

	e := &Engine{
		cfg:    cfg,
		bank:   bnk,
		logger: logger,
		det: detector.New(detector.Config{
			InitialAvgDiff:        cfg.InitialAvgDiff,
			NAmendAvgDiff:         cfg.NAmendAvgDiff,
			NumberOfPointsToAlarm: cfg.NumberOfPointsToAlarm,
			MultiplicatorToDetect: cfg.MultiplicatorToDetect,
			WaitStateUsec:         cfg.WaitStateUsec,
		}),
		coll: collector.New(cfg.FingerprintLength),
	}

	e.logStartupBanner()

	if bnk != nil && bnk.Len() > 0 {
		data := make([][]float64, 0, bnk.Len())
		for _, fp := range bnk.All() {
			data = append(data, ensemble.Features(fp.Coeffs))
		}
		f := iforest.New(iforest.WithSeed(42))
		if err := f.Fit(data); err != nil {
			logger.Warn("ensemble corroboration scorer not fitted", zap.Error(err))
		} else {
			e.ens = f
		}
	}

	return e, nil
}

func (e *Engine) logStartupBanner() {
	if e.cfg.DebugLevel < 1 {
		return
	}
	e.logger.Info("wavealarm parameters",
		zap.Int("sample_each", e.cfg.SampleEach),
		zap.Float64("initial_avg_diff", e.cfg.InitialAvgDiff),
		zap.Int("n_amend_avgdiff", e.cfg.NAmendAvgDiff),
		zap.Int("number_of_points_to_alarm", e.cfg.NumberOfPointsToAlarm),
		zap.Float64("multiplicator_to_detect", e.cfg.MultiplicatorToDetect),
		zap.Int64("wait_state_usec", e.cfg.WaitStateUsec),
		zap.Int("fingerprint_length", e.cfg.FingerprintLength),
		zap.Int("wavelet_function", int(e.cfg.WaveletOrder)),
		zap.Int("distance_calculation_type", int(e.cfg.DistanceType)),
		zap.Int("pos_from", e.cfg.PosFrom), zap.Int("pos_to", e.cfg.PosTo),
		zap.Int("neg_from", e.cfg.NegFrom), zap.Int("neg_to", e.cfg.NegTo),
		zap.Float64("matching_distance_pos_max", e.cfg.PosMax),
		zap.Float64("matching_distance_neg_max", e.cfg.NegMax),
		zap.Int("matches_evaluation_logic", int(e.cfg.MatchLogic)),
		zap.Bool("use_diff_value", e.cfg.UseDiffValue),
		zap.Int("generate_fingerprints", int(e.cfg.GenerateFingerprints)),
		zap.Int("genpattern_hour_limit", e.cfg.GenPatternHourLimit),
		zap.Bool("matchdistance_to_output", e.cfg.MatchDistanceToOutput),
		zap.String("skip_if_contains", e.cfg.SkipIfContains),
		zap.String("fingerprints_directory", e.cfg.FingerprintsDirectory),
		zap.Int("debug_level", e.cfg.DebugLevel),
		zap.Int("bank_size", e.bank.Len()),
	)
}

// processSample advances every stateful component by exactly one sample and
// returns the output record for it.
func (e *Engine) processSample(s sample.Sample) streamio.OutputRecord {
	var diffNoAbs float64
	if e.det.Seen() {
		diffNoAbs = s.Value - e.det.LastValue()
	}

	windowValue := s.Value
	if e.cfg.UseDiffValue {
		windowValue = diffNoAbs
	}

	var completedWindow []float64
	windowDone := false
	if e.coll.Active() {
		if w, done := e.coll.Step(windowValue); done {
			completedWindow = w
			windowDone = true
		}
	}

	detRes := e.det.Step(s.Time, s.Value, e.coll.Active())

	if detRes.WindowStarted {
		firstValue := s.Value
		if e.cfg.UseDiffValue {
			firstValue = detRes.DiffNoAbs
		}
		e.coll.Start(firstValue)
	}

	// patternID is what gets printed: the original resets _ispattern to 0
	// before printing on the completion sample itself, so it only reports
	// the id while a window is still being actively collected.
	patternID := 0
	if e.coll.Active() {
		patternID = e.coll.PatternID()
	}

	isFinalMatch := false
	matchDistanceOut := -1.0
	contivalue := 0.0

	if windowDone {
		// Active() is already false here (Step just closed the window), so
		// matcher/logging/persistence use the collector's last-assigned id
		// directly rather than the gated, output-facing patternID above.
		completedPatternID := e.coll.PatternID()

		res, err := matcher.Evaluate(completedWindow, e.bank, matcher.Config{
			WaveletOrder: e.cfg.WaveletOrder,
			Length:       e.cfg.FingerprintLength,
			Mode:         e.cfg.DistanceType,
			Policy:       e.cfg.MatchLogic,
			PosRange:     matcher.Range{From: e.cfg.PosFrom, To: e.cfg.PosTo},
			NegRange:     matcher.Range{From: e.cfg.NegFrom, To: e.cfg.NegTo},
			PosMax:       e.cfg.PosMax,
			NegMax:       e.cfg.NegMax,
		})
		if err != nil {
			e.logger.Error("matcher evaluation failed", zap.Error(err), zap.Int("pattern_id", completedPatternID))
		} else {
			isFinalMatch = res.IsMatch
			matchDistanceOut = res.MatchDistanceOut
			contivalue = res.Contivalue

			if isFinalMatch && e.cfg.DebugLevel >= 1 {
				e.logger.Info("final match",
					zap.Int("pattern_id", completedPatternID),
					zap.Float64("match_distance", matchDistanceOut),
					zap.String("matched_positive", res.MatchTestPosName))
			}

			e.reportEnsemble(completedPatternID, completedWindow)
			e.maybePersist(s, completedPatternID, res.Coeffs, isFinalMatch)
		}
	}

	outputValue := contivalue
	if e.cfg.MatchDistanceToOutput {
		outputValue = matchDistanceOut
	}

	if e.cfg.DebugLevel >= 2 {
		e.logger.Debug("sample processed",
			zap.Int64("line_id", e.lineID),
			zap.Float64("value", s.Value),
			zap.Float64("diff", diffNoAbs),
			zap.Float64("diffavg", detRes.DiffAvg),
			zap.Bool("is_alarm", detRes.IsAlarm),
			zap.Bool("is_wait", detRes.IsWait))
	}

	return streamio.OutputRecord{
		LineID:        e.lineID,
		Timestamp:     s.RawTimestamp,
		Meas:          s.Value,
		Diff:          diffNoAbs,
		DiffAvg:       detRes.DiffAvg,
		IsDetect:      detRes.IsDetect,
		IsAlarm:       detRes.IsAlarm,
		IsWait:        detRes.IsWait,
		PatternID:     patternID,
		IsFinalMatch:  isFinalMatch,
		MatchDistance: matchDistanceOut,
		Contivalue:    contivalue,
		OutputValue:   outputValue,
	}
}

func (e *Engine) reportEnsemble(patternID int, window []float64) {
	if e.ens == nil || e.cfg.DebugLevel < 1 {
		return
	}
	score, err := e.ens.PredictOne(ensemble.Features(window))
	if err != nil {
		return
	}
	e.logger.Info("ensemble corroboration score",
		zap.Int("pattern_id", patternID),
		zap.Float64("score", score))
}

// skipLine reports whether the skip_if_contains filter drops this raw input
// line before it is even parsed. Decimation is applied separately in Run.
func (e *Engine) skipLine(line string) bool {
	return e.cfg.SkipIfContains != "" && strings.Contains(line, e.cfg.SkipIfContains)
}
