package types

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rxtech-lab/kline-downloader/pkg/errors"
)

// FetchRequest describes one kline download task. Pagination derives a new
// request per page that differs only in StartTime.
type FetchRequest struct {
	APIBaseURL   string `json:"apiBaseUrl" validate:"required"`
	Market       Market `json:"market" validate:"required,oneof=Spot UsdFutures CoinFutures"`
	ContractType string `json:"contractType"`
	Symbol       string `json:"symbol" validate:"required"`
	Interval     string `json:"interval" validate:"required"`
	// StartTime and EndTime are epoch milliseconds, both inclusive.
	StartTime int64  `json:"startTime"`
	EndTime   int64  `json:"endTime"`
	OutputDir string `json:"outputDir"`
}

// WithStartTime returns a copy of the request starting at startTime.
func (r FetchRequest) WithStartTime(startTime int64) FetchRequest {
	r.StartTime = startTime

	return r
}

// WithSymbol returns a copy of the request for another symbol.
func (r FetchRequest) WithSymbol(symbol string) FetchRequest {
	r.Symbol = symbol

	return r
}

// CheckTimeRange enforces StartTime <= EndTime. Inverted ranges are never swapped.
func (r FetchRequest) CheckTimeRange() error {
	if r.StartTime > r.EndTime {
		return errors.Newf(errors.ErrCodeInvariantViolation,
			"start time %d is after end time %d for %s", r.StartTime, r.EndTime, r.Symbol)
	}

	return nil
}

// OutputFileName returns {symbol}_{market}_{interval}_{originalStart}_{end}.{ext}.
// originalStart is the start time of the first request so that retries and
// later runs of the same task resolve to the same file.
func (r FetchRequest) OutputFileName(originalStart int64, ext string) string {
	return fmt.Sprintf("%s_%s_%s_%d_%d.%s",
		r.Symbol,
		r.Market,
		r.Interval,
		originalStart,
		r.EndTime,
		strings.TrimPrefix(ext, "."),
	)
}

// OutputPath joins OutputDir and OutputFileName.
func (r FetchRequest) OutputPath(originalStart int64, ext string) string {
	return filepath.Join(r.OutputDir, r.OutputFileName(originalStart, ext))
}
