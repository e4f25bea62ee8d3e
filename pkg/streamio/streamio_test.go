package streamio_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hed1ad/wavealarm/pkg/streamio"
)

func TestParseTimestampHandlesVariableFractionWidth(t *testing.T) {
	ts1, err := streamio.ParseTimestamp("01-02-2026 03:04:05.5")
	require.NoError(t, err)
	assert.Equal(t, int64(500000), ts1.Usec)

	ts2, err := streamio.ParseTimestamp("01-02-2026 03:04:05.123456")
	require.NoError(t, err)
	assert.Equal(t, int64(123456), ts2.Usec)

	ts3, err := streamio.ParseTimestamp("01-02-2026 03:04:05")
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts3.Usec)
}

func TestParseLineRejectsMissingDelimiter(t *testing.T) {
	_, err := streamio.ParseLine("no semicolons here")
	assert.Error(t, err)
}

func TestParseLineParsesTimestampAndValue(t *testing.T) {
	s, err := streamio.ParseLine("01-02-2026 03:04:05.000000 ; 42.5 ; extra")
	require.NoError(t, err)
	assert.Equal(t, 42.5, s.Value)
	assert.Equal(t, "01-02-2026 03:04:05.000000", s.RawTimestamp)
}

func TestParseLineRejectsBadValue(t *testing.T) {
	_, err := streamio.ParseLine("01-02-2026 03:04:05.000000 ; not-a-number")
	assert.Error(t, err)
}

func TestLineReaderIteratesAllLines(t *testing.T) {
	r := streamio.NewLineReader(strings.NewReader("a\nb\nc\n"))
	var got []string
	for r.Scan() {
		got = append(got, r.Text())
	}
	require.NoError(t, r.Err())
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestWriterEmitsSemicolonDelimitedRecord(t *testing.T) {
	var buf bytes.Buffer
	w := streamio.NewWriter(&buf)
	err := w.WriteRecord(streamio.OutputRecord{
		LineID:        1,
		Timestamp:     "01-02-2026 03:04:05.000000",
		Meas:          100,
		Diff:          0,
		DiffAvg:       1,
		IsDetect:      false,
		IsAlarm:       false,
		IsWait:        false,
		PatternID:     0,
		IsFinalMatch:  false,
		MatchDistance: -1,
		Contivalue:    0,
		OutputValue:   0,
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "1;01-02-2026 03:04:05.000000;100;0;1;0;0;0;0;0;-1;0;0")
}
