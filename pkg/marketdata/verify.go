package marketdata

import (
	"fmt"
	"strings"

	"github.com/rxtech-lab/kline-downloader/internal/types"
	"github.com/rxtech-lab/kline-downloader/pkg/errors"
	"github.com/shopspring/decimal"
)

// Issue is a problem found in a series.
type Issue struct {
	Index    int
	OpenTime int64
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("candle %d (open time %d): %s", i.Index, i.OpenTime, i.Message)
}

// Report is the result of VerifySeries. Errors make the series unusable,
// warnings are informational.
type Report struct {
	Errors   []Issue
	Warnings []Issue
}

// OK reports whether the series has no errors.
func (r Report) OK() bool {
	return len(r.Errors) == 0
}

// Err returns a MalformedResponse error describing the errors, or nil.
func (r Report) Err(symbol string) error {
	if r.OK() {
		return nil
	}

	messages := make([]string, 0, len(r.Errors))
	for _, issue := range r.Errors {
		messages = append(messages, issue.String())
	}

	return errors.Newf(errors.ErrCodeMalformedResponse, "series for %s failed verification: %s",
		symbol, strings.Join(messages, "; "))
}

// VerifySeries checks that open times are strictly increasing and not before
// the requested start. Gaps longer than one interval and inconsistent prices
// are reported as warnings. Monthly series are not gap checked.
func VerifySeries(series types.Series, interval Interval) Report {
	var report Report

	step := interval.Millis()

	for i, c := range series.Candles {
		if i == 0 && c.OpenTime < series.StartTime {
			report.Errors = append(report.Errors, Issue{
				Index:    i,
				OpenTime: c.OpenTime,
				Message:  fmt.Sprintf("opens before requested start %d", series.StartTime),
			})
		}

		if i > 0 {
			prev := series.Candles[i-1].OpenTime

			switch {
			case c.OpenTime <= prev:
				report.Errors = append(report.Errors, Issue{
					Index:    i,
					OpenTime: c.OpenTime,
					Message:  fmt.Sprintf("not after previous open time %d", prev),
				})
			case step > 0 && c.OpenTime-prev > step:
				report.Warnings = append(report.Warnings, Issue{
					Index:    i,
					OpenTime: c.OpenTime,
					Message:  fmt.Sprintf("gap of %d missing candle(s)", (c.OpenTime-prev)/step-1),
				})
			}
		}

		if msg := checkPrices(c); msg != "" {
			report.Warnings = append(report.Warnings, Issue{Index: i, OpenTime: c.OpenTime, Message: msg})
		}
	}

	return report
}

func checkPrices(c types.Candle) string {
	values := make([]decimal.Decimal, 0, 5)

	for _, field := range []struct {
		name  string
		value string
	}{
		{"open", c.Open},
		{"high", c.High},
		{"low", c.Low},
		{"close", c.Close},
		{"volume", c.Volume},
	} {
		d, err := decimal.NewFromString(field.value)
		if err != nil {
			return fmt.Sprintf("%s %q is not a decimal", field.name, field.value)
		}

		values = append(values, d)
	}

	open, high, low, closePrice, volume := values[0], values[1], values[2], values[3], values[4]

	switch {
	case low.GreaterThan(high):
		return "low above high"
	case open.GreaterThan(high) || closePrice.GreaterThan(high):
		return "open or close above high"
	case open.LessThan(low) || closePrice.LessThan(low):
		return "open or close below low"
	case volume.IsNegative():
		return "negative volume"
	default:
		return ""
	}
}
