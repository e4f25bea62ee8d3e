// Package detector implements the adaptive noise-floor alarm state machine:
// a running estimate of the typical sample-to-sample difference, a
// threshold trigger once that estimate is exceeded for a run of points, and
// a cool-down window that suppresses re-triggering while a fingerprint
// window is being collected.
package detector

import (
	"math"

	"github.com/hed1ad/wavealarm/pkg/sample"
)

// Config holds the detector's tunable parameters. Validation (ranges,
// defaults) is the engine's responsibility; Config is assumed valid here.
type Config struct {
	// InitialAvgDiff seeds the noise floor before any samples are observed.
	InitialAvgDiff float64
	// NAmendAvgDiff is the EMA window N: diffavg <- (diffavg*(N-1)+diff)/N.
	NAmendAvgDiff int
	// NumberOfPointsToAlarm is the run length A of above-threshold samples
	// required to raise an alarm.
	NumberOfPointsToAlarm int
	// MultiplicatorToDetect is the factor M the noise floor is multiplied by
	// to form the per-sample threshold.
	MultiplicatorToDetect float64
	// WaitStateUsec is the cool-down window W, in microseconds, after an
	// alarm before counting can resume; Step keeps the wait state asserted
	// beyond W for as long as its collectorActive argument is true.
	WaitStateUsec int64
}

// Result reports the outcome of a single Step call.
type Result struct {
	// DiffNoAbs is curval-lastval, signed. This is the value recorded in the
	// output stream's "diff" field and, in difference mode, the value
	// pushed into the fingerprint window.
	DiffNoAbs float64
	// DiffAbs is |DiffNoAbs|, the value compared against the threshold.
	DiffAbs float64
	// DiffAvg is the noise floor after this step's update, if any.
	DiffAvg float64
	// IsAlarm is true only on the sample that raised the alarm.
	IsAlarm bool
	// IsWait is true while the detector is in its cool-down/collection
	// window and will not count samples toward a new alarm.
	IsWait bool
	// IsDetect is true whenever the run-length counter has moved off its
	// rest value, i.e. an above-threshold run is in progress.
	IsDetect bool
	// NumThresholded is the run-length counter's value after this step.
	NumThresholded int
	// WindowStarted is true iff this sample should begin a new fingerprint
	// window. The detector does not own the collector; the caller is
	// responsible for starting one when this is set.
	WindowStarted bool
}

// State is the per-series adaptive detector. It is not safe for concurrent
// use without external synchronization.
type State struct {
	cfg Config

	diffavg float64
	lastval float64
	hasLast bool

	numThresholded int
	isAlarm        bool
	isWait         bool
	alarmRaiseTime sample.Timestamp
}

// New returns a detector seeded with cfg.InitialAvgDiff and a full run-length
// allowance.
func New(cfg Config) *State {
	return &State{
		cfg:            cfg,
		diffavg:        cfg.InitialAvgDiff,
		numThresholded: cfg.NumberOfPointsToAlarm,
	}
}

// LastValue returns the most recently observed sample value, or 0 if none
// has been observed yet.
func (s *State) LastValue() float64 {
	return s.lastval
}

// Seen reports whether Step has been called at least once.
func (s *State) Seen() bool {
	return s.hasLast
}

// Step advances the detector by one sample. collectorActive must reflect
// whether a fingerprint window is still being collected after the caller has
// already driven the collector for this same sample; it is used only to
// re-assert the wait state while a window remains in flight.
func (s *State) Step(now sample.Timestamp, curval float64, collectorActive bool) Result {
	if !s.hasLast {
		s.lastval = curval
		s.hasLast = true
	}

	diffNoAbs := curval - s.lastval
	diffAbs := math.Abs(diffNoAbs)

	var windowStarted bool

	if s.isWait {
		s.isAlarm = false
		if now.Sub(s.alarmRaiseTime) > s.cfg.WaitStateUsec {
			s.isWait = false
		}
		if collectorActive {
			s.isWait = true
		}
	} else {
		if s.diffavg == 0 || diffAbs < s.cfg.MultiplicatorToDetect*s.diffavg {
			s.numThresholded = s.cfg.NumberOfPointsToAlarm
		} else {
			s.numThresholded--
			if s.numThresholded <= 0 {
				s.isAlarm = true
				s.alarmRaiseTime = now
				s.isWait = true
				s.numThresholded = s.cfg.NumberOfPointsToAlarm
				windowStarted = true
			}
		}
	}

	if !s.isWait && s.numThresholded == s.cfg.NumberOfPointsToAlarm && s.cfg.NAmendAvgDiff > 0 {
		n := float64(s.cfg.NAmendAvgDiff)
		s.diffavg = (s.diffavg*(n-1) + diffAbs) / n
	}

	s.lastval = curval

	return Result{
		DiffNoAbs:      diffNoAbs,
		DiffAbs:        diffAbs,
		DiffAvg:        s.diffavg,
		IsAlarm:        s.isAlarm,
		IsWait:         s.isWait,
		IsDetect:       s.numThresholded != s.cfg.NumberOfPointsToAlarm,
		NumThresholded: s.numThresholded,
		WindowStarted:  windowStarted,
	}
}
