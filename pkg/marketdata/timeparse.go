package marketdata

import (
	"strconv"
	"strings"
	"time"

	"github.com/rxtech-lab/kline-downloader/pkg/errors"
)

// DateTimeLayout is the textual form accepted by ParseTime, interpreted as UTC.
const DateTimeLayout = "2006-01-02 15:04:05"

// ParseTime accepts either an epoch-millisecond integer or a
// "YYYY-MM-DD HH:MM:SS" date time. Integers that fall outside years 1..9999
// are tried against the layout, which then fails.
func ParseTime(input string) (time.Time, error) {
	value := strings.TrimSpace(input)

	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		if t, ok := fromUnixMilli(ms); ok {
			return t, nil
		}
	}

	t, err := time.ParseInLocation(DateTimeLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, errors.Wrapf(errors.ErrCodeInvalidTimeFormat, err,
			"cannot parse %q: expected epoch milliseconds or %q", input, "YYYY-MM-DD HH:MM:SS")
	}

	// time.Parse accepts fractional seconds the layout does not name.
	if t.Format(DateTimeLayout) != value {
		return time.Time{}, errors.Newf(errors.ErrCodeInvalidTimeFormat,
			"cannot parse %q: expected exactly %q", input, "YYYY-MM-DD HH:MM:SS")
	}

	return t, nil
}

// ParseTimeMillis is ParseTime returning epoch milliseconds.
func ParseTimeMillis(input string) (int64, error) {
	t, err := ParseTime(input)
	if err != nil {
		return 0, err
	}

	return t.UnixMilli(), nil
}

func fromUnixMilli(ms int64) (time.Time, bool) {
	t := time.UnixMilli(ms).UTC()
	if t.Year() < 1 || t.Year() > 9999 {
		return time.Time{}, false
	}

	return t, true
}
