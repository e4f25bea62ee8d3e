package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hed1ad/wavealarm/pkg/distance"
	"github.com/hed1ad/wavealarm/pkg/engine"
	"github.com/hed1ad/wavealarm/pkg/matcher"
	"github.com/hed1ad/wavealarm/pkg/wavelet"
)

func validConfig() engine.Config {
	cfg := baseConfig()
	cfg.PosTo = 1000
	return cfg
}

func TestValidateCoercesFingerprintLengthToPowerOfTwo(t *testing.T) {
	cfg := validConfig()
	cfg.FingerprintLength = 1000

	out, warnings, err := cfg.Validate()
	require.NoError(t, err)
	assert.Equal(t, 512, out.FingerprintLength)
	assert.NotEmpty(t, warnings)
}

func TestValidateClampsToIndices(t *testing.T) {
	cfg := validConfig()
	cfg.FingerprintLength = 8
	cfg.PosTo = 1000
	cfg.NegTo = 1000

	out, warnings, err := cfg.Validate()
	require.NoError(t, err)
	assert.Equal(t, 7, out.PosTo)
	assert.Equal(t, 7, out.NegTo)
	assert.NotEmpty(t, warnings)
}

func TestValidateRejectsBadSampleEach(t *testing.T) {
	cfg := validConfig()
	cfg.SampleEach = 0
	_, _, err := cfg.Validate()
	assert.Error(t, err)
}

func TestValidateRejectsTooShortFingerprintLength(t *testing.T) {
	cfg := validConfig()
	cfg.FingerprintLength = 4
	_, _, err := cfg.Validate()
	assert.Error(t, err)
}

func TestValidateRejectsUnsupportedWavelet(t *testing.T) {
	cfg := validConfig()
	cfg.WaveletOrder = wavelet.Order(3)
	_, _, err := cfg.Validate()
	assert.Error(t, err)
}

func TestValidateRejectsBadDistanceType(t *testing.T) {
	cfg := validConfig()
	cfg.DistanceType = distance.Mode(9)
	_, _, err := cfg.Validate()
	assert.Error(t, err)
}

func TestValidateRejectsBadMatchLogic(t *testing.T) {
	cfg := validConfig()
	cfg.MatchLogic = matcher.Policy(7)
	_, _, err := cfg.Validate()
	assert.Error(t, err)
}

func TestValidateRejectsEmptyFingerprintsDirectory(t *testing.T) {
	cfg := validConfig()
	cfg.FingerprintsDirectory = ""
	_, _, err := cfg.Validate()
	assert.Error(t, err)
}
