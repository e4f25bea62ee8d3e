package streamio

import (
	"encoding/csv"
	"io"
	"strconv"
)

// OutputRecord carries every field of one emitted output line, in the order
// they are written.
type OutputRecord struct {
	LineID        int64
	Timestamp     string
	Meas          float64
	Diff          float64
	DiffAvg       float64
	IsDetect      bool
	IsAlarm       bool
	IsWait        bool
	PatternID     int
	IsFinalMatch  bool
	MatchDistance float64
	Contivalue    float64
	OutputValue   float64
}

// Writer emits OutputRecords as semicolon-delimited lines.
type Writer struct {
	w *csv.Writer
}

// NewWriter wraps w for output-record writing. Each WriteRecord call
// auto-flushes so output ordering is visible to downstream consumers as it
// is produced, matching the one-line-per-sample streaming contract.
func NewWriter(w io.Writer) *Writer {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	cw.UseCRLF = false
	return &Writer{w: cw}
}

// WriteRecord writes a single output line.
func (w *Writer) WriteRecord(rec OutputRecord) error {
	fields := []string{
		strconv.FormatInt(rec.LineID, 10),
		rec.Timestamp,
		formatFloat(rec.Meas),
		formatFloat(rec.Diff),
		formatFloat(rec.DiffAvg),
		boolField(rec.IsDetect),
		boolField(rec.IsAlarm),
		boolField(rec.IsWait),
		strconv.Itoa(rec.PatternID),
		boolField(rec.IsFinalMatch),
		formatFloat(rec.MatchDistance),
		formatFloat(rec.Contivalue),
		formatFloat(rec.OutputValue),
	}
	if err := w.w.Write(fields); err != nil {
		return err
	}
	w.w.Flush()
	return w.w.Error()
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
