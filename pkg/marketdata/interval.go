package marketdata

import (
	"time"

	"github.com/rxtech-lab/kline-downloader/pkg/errors"
)

// Interval is a kline interval as understood by the exchange.
type Interval string

const (
	IntervalOneSecond      Interval = "1s"
	IntervalOneMinute      Interval = "1m"
	IntervalThreeMinutes   Interval = "3m"
	IntervalFiveMinutes    Interval = "5m"
	IntervalFifteenMinutes Interval = "15m"
	IntervalThirtyMinutes  Interval = "30m"
	IntervalOneHour        Interval = "1h"
	IntervalTwoHours       Interval = "2h"
	IntervalFourHours      Interval = "4h"
	IntervalSixHours       Interval = "6h"
	IntervalEightHours     Interval = "8h"
	IntervalTwelveHours    Interval = "12h"
	IntervalOneDay         Interval = "1d"
	IntervalThreeDays      Interval = "3d"
	IntervalOneWeek        Interval = "1w"
	IntervalOneMonth       Interval = "1M"
)

// Intervals lists every interval in ascending length.
var Intervals = []Interval{
	IntervalOneSecond,
	IntervalOneMinute,
	IntervalThreeMinutes,
	IntervalFiveMinutes,
	IntervalFifteenMinutes,
	IntervalThirtyMinutes,
	IntervalOneHour,
	IntervalTwoHours,
	IntervalFourHours,
	IntervalSixHours,
	IntervalEightHours,
	IntervalTwelveHours,
	IntervalOneDay,
	IntervalThreeDays,
	IntervalOneWeek,
	IntervalOneMonth,
}

// ParseInterval validates an interval string. Intervals are case sensitive:
// "1m" is one minute and "1M" one month.
func ParseInterval(s string) (Interval, error) {
	for _, interval := range Intervals {
		if string(interval) == s {
			return interval, nil
		}
	}

	return "", errors.Newf(errors.ErrCodeInvalidInterval, "unsupported interval %q", s)
}

func (i Interval) String() string {
	return string(i)
}

// Duration returns the nominal length of one candle. Months have no fixed
// length and report zero.
func (i Interval) Duration() time.Duration {
	switch i {
	case IntervalOneSecond:
		return time.Second
	case IntervalOneMinute:
		return time.Minute
	case IntervalThreeMinutes:
		return 3 * time.Minute
	case IntervalFiveMinutes:
		return 5 * time.Minute
	case IntervalFifteenMinutes:
		return 15 * time.Minute
	case IntervalThirtyMinutes:
		return 30 * time.Minute
	case IntervalOneHour:
		return time.Hour
	case IntervalTwoHours:
		return 2 * time.Hour
	case IntervalFourHours:
		return 4 * time.Hour
	case IntervalSixHours:
		return 6 * time.Hour
	case IntervalEightHours:
		return 8 * time.Hour
	case IntervalTwelveHours:
		return 12 * time.Hour
	case IntervalOneDay:
		return 24 * time.Hour
	case IntervalThreeDays:
		return 72 * time.Hour
	case IntervalOneWeek:
		return 7 * 24 * time.Hour
	default:
		return 0
	}
}

// Millis returns Duration in milliseconds.
func (i Interval) Millis() int64 {
	return i.Duration().Milliseconds()
}
