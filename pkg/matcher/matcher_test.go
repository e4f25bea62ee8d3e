package matcher_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hed1ad/wavealarm/pkg/bank"
	"github.com/hed1ad/wavealarm/pkg/distance"
	"github.com/hed1ad/wavealarm/pkg/matcher"
	"github.com/hed1ad/wavealarm/pkg/wavelet"
)

func window() []float64 {
	return []float64{1, 2, 3, 4, 5, 6, 7, 8}
}

func baseConfig(policy matcher.Policy) matcher.Config {
	return matcher.Config{
		WaveletOrder: wavelet.Order2,
		Length:       8,
		Mode:         distance.PerIndex,
		Policy:       policy,
		PosRange:     matcher.Range{From: 0, To: 7},
		NegRange:     matcher.Range{From: 0, To: 7},
		PosMax:       0.5,
		NegMax:       0.5,
	}
}

func TestEvaluatePolicyZeroAlwaysMatches(t *testing.T) {
	b := bank.Empty()
	res, err := matcher.Evaluate(window(), b, baseConfig(matcher.PolicyAlwaysMatch))
	require.NoError(t, err)
	assert.True(t, res.IsMatch)
	assert.Equal(t, -1.0, res.MatchDistanceOut)
	assert.Equal(t, 1.0, res.Contivalue)
}

func TestEvaluateEmptyBankDefaultsMinToOne(t *testing.T) {
	b := bank.Empty()
	res, err := matcher.Evaluate(window(), b, baseConfig(matcher.PolicyPositivesAll))
	require.NoError(t, err)
	assert.False(t, res.IsMatch)
	assert.Equal(t, 1.0, res.MinPos)
	assert.Equal(t, -1.0, res.MatchDistanceOut)
	assert.Equal(t, 0.0, res.Contivalue)
}

func TestEvaluatePolicyOneNoNegativeHits(t *testing.T) {
	far := bank.Fingerprint{Name: "n_far", Kind: bank.Negative, Coeffs: []float64{100, 100, 100, 100, 100, 100, 100, 100}}
	bk := newBank(far)

	res, err := matcher.Evaluate(window(), bk, baseConfig(matcher.PolicyNegativesOnly))
	require.NoError(t, err)
	assert.True(t, res.IsMatch)
	assert.Equal(t, res.MinNeg, res.MatchDistanceOut)
	assert.Equal(t, res.MinNeg, res.Contivalue)
}

func TestEvaluatePolicyTwoPositiveFirstHitStopsScanning(t *testing.T) {
	// Bank fingerprints hold wavelet coefficients, so the matching exemplars
	// are the transform of the window itself (distance 0).
	tr, err := wavelet.New(wavelet.Order2)
	require.NoError(t, err)
	coeffs, err := tr.Transform(window())
	require.NoError(t, err)

	near := bank.Fingerprint{Name: "p_near", Kind: bank.Positive, Coeffs: coeffs}
	nearToo := bank.Fingerprint{Name: "p_near_too", Kind: bank.Positive, Coeffs: coeffs}
	bk := newBank(near, nearToo)

	res, err := matcher.Evaluate(window(), bk, baseConfig(matcher.PolicyPositivesFirstHit))
	require.NoError(t, err)
	assert.True(t, res.IsMatch)
	assert.Equal(t, 1, res.MatchPosCount, "must stop after the first hit and never count the second matching exemplar")
	assert.Equal(t, "p_near", res.MatchTestPosName)
}

func TestEvaluateUnknownPolicyErrors(t *testing.T) {
	b := bank.Empty()
	_, err := matcher.Evaluate(window(), b, baseConfig(matcher.Policy(99)))
	assert.Error(t, err)
}

// newBank is a small test helper constructing a Bank around a fixed set of
// fingerprints without touching the filesystem.
func newBank(fps ...bank.Fingerprint) *bank.Bank {
	return bank.FromFingerprints(fps)
}
