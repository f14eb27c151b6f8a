package marketdata

import (
	"context"

	"github.com/rxtech-lab/kline-downloader/internal/logger"
	"github.com/rxtech-lab/kline-downloader/internal/types"
	"github.com/rxtech-lab/kline-downloader/pkg/errors"
	"github.com/rxtech-lab/kline-downloader/pkg/marketdata/provider"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// OnPage is called after every page with the cursor the page was requested
// from, the end of the range and the number of candles received so far.
type OnPage func(symbol string, cursor int64, end int64, fetched int)

// Paginator walks a time range page by page.
//
// A page shorter than types.KlineLimit ends the walk. After a full page the
// last candle is dropped and the next page starts at its open time, so the
// boundary candle is fetched again and kept exactly once.
type Paginator struct {
	provider provider.Provider
	limiter  *rate.Limiter
	logger   *logger.Logger
	onPage   OnPage
}

// NewPaginator creates a paginator. A nil limiter means no throttling.
func NewPaginator(p provider.Provider, limiter *rate.Limiter, log *logger.Logger) *Paginator {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}

	if log == nil {
		log = logger.NewNop()
	}

	return &Paginator{
		provider: p,
		limiter:  limiter,
		logger:   log,
	}
}

// SetOnPage installs a progress callback.
func (p *Paginator) SetOnPage(fn OnPage) {
	p.onPage = fn
}

// FetchSeries downloads every candle of req with open time in
// [req.StartTime, req.EndTime].
func (p *Paginator) FetchSeries(ctx context.Context, req types.FetchRequest) (types.Series, error) {
	series := types.Series{
		Symbol:    req.Symbol,
		StartTime: req.StartTime,
		Candles:   make([]types.Candle, 0),
	}

	cursor := req.StartTime
	fetched := 0

	for {
		pageReq := req.WithStartTime(cursor)
		if err := pageReq.CheckTimeRange(); err != nil {
			return types.Series{}, err
		}

		if err := p.limiter.Wait(ctx); err != nil {
			return types.Series{}, err
		}

		page, err := p.provider.FetchPage(ctx, pageReq)
		if err != nil {
			if ctx.Err() != nil {
				return types.Series{}, ctx.Err()
			}

			if errors.GetCode(err) == errors.ErrCodeUnknown {
				err = errors.Wrapf(errors.ErrCodeFetchFailed, err, "failed to fetch klines for %s", req.Symbol)
			}

			return types.Series{}, err
		}

		fetched += len(page)
		series.Candles = append(series.Candles, page...)

		p.logger.Debug("Fetched page",
			zap.String("symbol", req.Symbol),
			zap.Int64("cursor", cursor),
			zap.Int("size", len(page)),
		)

		if p.onPage != nil {
			p.onPage(req.Symbol, cursor, req.EndTime, fetched)
		}

		if len(page) < types.KlineLimit {
			return series, nil
		}

		last := series.Candles[len(series.Candles)-1].OpenTime
		series.Candles = series.Candles[:len(series.Candles)-1]

		if last <= cursor {
			return types.Series{}, errors.Newf(errors.ErrCodeMalformedResponse,
				"klines for %s did not advance past %d", req.Symbol, cursor)
		}

		cursor = last
	}
}
