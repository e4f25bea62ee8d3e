package streamio

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hed1ad/wavealarm/pkg/sample"
)

const dateLayout = "02-01-2006 15:04:05"

// ParseTimestamp parses a "dd-mm-yyyy hh:mm:ss.usec" field into a
// sample.Timestamp. The fractional part is optional and, when present, is
// interpreted as microseconds regardless of its printed width (truncated or
// zero-padded to six digits). Local time is used deliberately, matching the
// original program's use of local mktime().
func ParseTimestamp(field string) (sample.Timestamp, error) {
	field = strings.TrimSpace(field)

	datePart := field
	fracPart := ""
	if i := strings.LastIndex(field, "."); i >= 0 {
		datePart = field[:i]
		fracPart = field[i+1:]
	}

	t, err := time.ParseInLocation(dateLayout, datePart, time.Local)
	if err != nil {
		return sample.Timestamp{}, fmt.Errorf("streamio: invalid timestamp %q: %w", field, err)
	}

	usec, err := microsFromFraction(fracPart)
	if err != nil {
		return sample.Timestamp{}, fmt.Errorf("streamio: invalid timestamp %q: %w", field, err)
	}

	return sample.Timestamp{Sec: t.Unix(), Usec: usec}, nil
}

func microsFromFraction(frac string) (int64, error) {
	if frac == "" {
		return 0, nil
	}
	switch {
	case len(frac) < 6:
		frac += strings.Repeat("0", 6-len(frac))
	case len(frac) > 6:
		frac = frac[:6]
	}
	return strconv.ParseInt(frac, 10, 64)
}
