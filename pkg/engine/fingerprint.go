package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hed1ad/wavealarm/pkg/sample"
)

// rateBucket enforces the per-hour fingerprint-generation cap: a rolling
// hour window starting at the first write observed in it.
type rateBucket struct {
	start sample.Timestamp
	count int
	armed bool
}

const hourUsec = int64(60 * 60 * 1_000_000)

// allow reports whether a write is permitted at now under limit (0 means
// unlimited), resetting the bucket if the prior hour has elapsed, and
// records the write if permitted.
func (b *rateBucket) allow(now sample.Timestamp, limit int) bool {
	if !b.armed || now.Sub(b.start) > hourUsec {
		b.start = now
		b.count = 0
		b.armed = true
	}
	if limit != 0 && b.count >= limit {
		return false
	}
	b.count++
	return true
}

// maybePersist writes the fingerprint coefficients for a completed window to
// the fingerprints directory, subject to GenerateFingerprints and the
// per-hour cap. Failures are logged, not fatal (spec.md §7 GenerationError).
func (e *Engine) maybePersist(s sample.Sample, patternID int, coeffs []float64, isMatch bool) {
	switch e.cfg.GenerateFingerprints {
	case GenerateNone:
		return
	case GenerateUnmatchedOnly:
		if isMatch {
			return
		}
	}

	if !e.bucket.allow(s.Time, e.cfg.GenPatternHourLimit) {
		if e.cfg.DebugLevel >= 1 {
			e.logger.Info("fingerprint generation limit within hour reached, fingerprint not saved")
		}
		return
	}

	name := fingerprintFilename(patternID, s.RawTimestamp, int(e.cfg.WaveletOrder), e.cfg.FingerprintLength)
	path := filepath.Join(e.cfg.FingerprintsDirectory, name)

	if err := writeFingerprintFile(path, coeffs); err != nil {
		e.logger.Error("failed to save fingerprint", zap.String("path", path), zap.Error(err))
		return
	}

	if e.cfg.DebugLevel >= 1 {
		e.logger.Info("fingerprint saved", zap.String("file", name))
	}
}

// fingerprintFilename builds "w_ZZZZ{patternID}_{sanitized}.fpr{order}_len{L}",
// zero-padding patternID to 4 digits.
func fingerprintFilename(patternID int, rawTimestamp string, order, length int) string {
	return fmt.Sprintf("w_%04d_%s.fpr%d_len%d", patternID, sanitizeTimestamp(rawTimestamp), order, length)
}

var timestampReplacer = strings.NewReplacer(
	":", "_",
	"-", "_",
	".", "_",
	" ", "_",
)

func sanitizeTimestamp(ts string) string {
	return timestampReplacer.Replace(ts)
}

func writeFingerprintFile(path string, coeffs []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open fingerprint file: %w", err)
	}
	defer f.Close()

	for _, c := range coeffs {
		if _, err := f.WriteString(strconv.FormatFloat(c, 'f', 15, 64) + "\n"); err != nil {
			return fmt.Errorf("write fingerprint file: %w", err)
		}
	}
	return nil
}
