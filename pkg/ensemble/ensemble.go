// Package ensemble provides an optional, auxiliary anomaly scorer used to
// corroborate a fingerprint match against the statistical spread of the
// bank it was compared to. It never participates in the canonical match
// decision (ismatch/matchdistance_out/contivalue) — it is a read-only
// diagnostic surfaced through logging.
package ensemble

import (
	"context"

	"gonum.org/v1/gonum/stat"
)

// Detector is the common interface for the ensemble's scoring algorithms.
type Detector interface {
	// Fit trains the detector on historical feature vectors.
	Fit(data [][]float64) error

	// Predict returns anomaly scores for the given feature vectors.
	// Scores are normalized to [0, 1] where higher values indicate anomalies.
	Predict(data [][]float64) ([]float64, error)

	// PredictOne returns the anomaly score for a single feature vector.
	PredictOne(features []float64) (float64, error)

	// Save serializes the trained model to bytes.
	Save() ([]byte, error)

	// Load deserializes a trained model from bytes.
	Load(data []byte) error
}

// StreamDetector extends Detector with streaming capabilities. Not wired
// into Engine.Run (spec.md §5 mandates a single-threaded event loop); kept
// for library callers and exercised by tests.
type StreamDetector interface {
	Detector

	// PredictStream processes feature vectors from a channel and writes
	// scores to output until input closes or ctx is cancelled.
	PredictStream(ctx context.Context, input <-chan []float64, output chan<- Score) error
}

// Score is a single corroboration result.
type Score struct {
	Value     float64
	IsAnomaly bool
	Features  []float64
}

// Features extracts the 4-dimensional statistical summary
// (mean, variance, peak-to-peak range, mean absolute first difference) used
// to fit and query the ensemble detector from a raw coefficient or sample
// window.
func Features(v []float64) []float64 {
	if len(v) == 0 {
		return []float64{0, 0, 0, 0}
	}

	mean, variance := stat.MeanVariance(v, nil)

	lo, hi := v[0], v[0]
	for _, x := range v {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}

	var madSum float64
	for i := 1; i < len(v); i++ {
		d := v[i] - v[i-1]
		if d < 0 {
			d = -d
		}
		madSum += d
	}
	mad := 0.0
	if len(v) > 1 {
		mad = madSum / float64(len(v)-1)
	}

	return []float64{mean, variance, hi - lo, mad}
}
