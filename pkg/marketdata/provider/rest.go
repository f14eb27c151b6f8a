package provider

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rxtech-lab/kline-downloader/internal/logger"
	"github.com/rxtech-lab/kline-downloader/internal/metrics"
	"github.com/rxtech-lab/kline-downloader/internal/types"
	"github.com/rxtech-lab/kline-downloader/pkg/errors"
	"go.uber.org/zap"
)

// RESTProvider talks to the exchange over plain HTTP. Endpoint names are
// appended to the base URL as is, so any Binance compatible root works.
type RESTProvider struct {
	client  *resty.Client
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// NewRESTProvider creates a REST provider.
func NewRESTProvider(config Config) *RESTProvider {
	config = config.withDefaults()

	client := resty.New().
		SetTimeout(config.Timeout).
		SetHeader("Accept", "application/json")

	if config.UserAgent != "" {
		client.SetHeader("User-Agent", config.UserAgent)
	}

	return &RESTProvider{
		client:  client,
		metrics: config.Metrics,
		logger:  config.Logger.Named("rest"),
	}
}

// ListSymbols fetches {baseURL}exchangeInfo. The market is not needed since
// the base URL already selects it.
func (p *RESTProvider) ListSymbols(ctx context.Context, _ types.Market, baseURL string) ([]SymbolInfo, error) {
	started := time.Now()
	symbols, err := p.listSymbols(ctx, baseURL)
	observe(p.metrics, endpointExchangeInfo, started, err)

	return symbols, err
}

func (p *RESTProvider) listSymbols(ctx context.Context, baseURL string) ([]SymbolInfo, error) {
	url := baseURL + endpointExchangeInfo
	p.logger.Debug("Fetching symbol directory", zap.String("url", url))

	resp, err := p.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeRemoteUnavailable, err, "failed to fetch %s", url)
	}

	if !resp.IsSuccess() {
		return nil, errors.Newf(errors.ErrCodeRemoteUnavailable,
			"failed to fetch %s: status %d: %s", url, resp.StatusCode(), truncate(resp.Body()))
	}

	symbols, err := DecodeExchangeInfo(resp.Body())
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMalformedResponse, err, "invalid response from %s", url)
	}

	return symbols, nil
}

// FetchPage fetches one page of klines.
func (p *RESTProvider) FetchPage(ctx context.Context, req types.FetchRequest) ([]types.Candle, error) {
	started := time.Now()
	candles, err := p.fetchPage(ctx, req)
	observe(p.metrics, endpointKlines, started, err)

	if err == nil {
		p.metrics.AddCandles(len(candles))
	}

	return candles, err
}

func (p *RESTProvider) fetchPage(ctx context.Context, req types.FetchRequest) ([]types.Candle, error) {
	// The query is encoded into the URL so the parameter order is kept on the wire.
	url := req.APIBaseURL + endpointKlines + "?" + BuildQuery(req).Encode()
	p.logger.Debug("Fetching klines",
		zap.String("symbol", req.Symbol),
		zap.Int64("cursor", req.StartTime),
		zap.String("url", url),
	)

	resp, err := p.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeFetchFailed, err, "failed to fetch klines for %s", req.Symbol)
	}

	if !resp.IsSuccess() {
		return nil, errors.Newf(errors.ErrCodeFetchFailed,
			"failed to fetch klines for %s: status %d: %s", req.Symbol, resp.StatusCode(), truncate(resp.Body()))
	}

	candles, err := DecodeKlines(resp.Body())
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMalformedResponse, err, "invalid klines response for %s", req.Symbol)
	}

	return candles, nil
}
