package engine

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/hed1ad/wavealarm/pkg/streamio"
)

// Run drives the pipeline to completion: it reads lines from r, applies
// sample-rate decimation and skip_if_contains filtering, parses each kept
// line, steps the detector/collector/matcher, and writes one output record
// per processed sample to w. It returns nil on clean EOF and a non-nil error
// only on a fatal write or input read failure; per-line parse errors are
// swallowed (logged at debug_level 2).
func (e *Engine) Run(r io.Reader, w io.Writer) error {
	lr := streamio.NewLineReader(r)
	out := streamio.NewWriter(w)

	decimate := 0

	for lr.Scan() {
		line := lr.Text()

		decimate++
		if decimate < e.cfg.SampleEach {
			continue
		}
		decimate = 0

		if e.skipLine(line) {
			continue
		}

		s, err := streamio.ParseLine(line)
		if err != nil {
			if e.cfg.DebugLevel >= 2 {
				e.logger.Debug("skipping unparsable line", zap.Error(err))
			}
			continue
		}

		e.lineID++
		rec := e.processSample(s)

		if err := out.WriteRecord(rec); err != nil {
			return fmt.Errorf("engine: write output record: %w", err)
		}
	}

	if err := lr.Err(); err != nil {
		return fmt.Errorf("engine: read input: %w", err)
	}
	return nil
}
