package provider

import (
	"context"
	"net/http"
	"net/url"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/kline-downloader/internal/logger"
	"github.com/rxtech-lab/kline-downloader/internal/metrics"
	"github.com/rxtech-lab/kline-downloader/internal/types"
	"github.com/rxtech-lab/kline-downloader/pkg/errors"
	"go.uber.org/zap"
)

// BinanceProvider fetches data through the go-binance SDK. The SDK appends its
// own API paths, so only the scheme and host of the configured base URL are used.
// Coin-margined futures and contract types are only available over REST.
type BinanceProvider struct {
	httpClient *http.Client
	metrics    *metrics.Metrics
	logger     *logger.Logger
}

// NewBinanceProvider creates an SDK backed provider.
func NewBinanceProvider(config Config) *BinanceProvider {
	config = config.withDefaults()

	return &BinanceProvider{
		httpClient: &http.Client{Timeout: config.Timeout},
		metrics:    config.Metrics,
		logger:     config.Logger.Named("sdk"),
	}
}

// ListSymbols queries the exchangeInfo service of the market.
func (p *BinanceProvider) ListSymbols(ctx context.Context, market types.Market, baseURL string) ([]SymbolInfo, error) {
	started := time.Now()
	symbols, err := p.listSymbols(ctx, market, baseURL)
	observe(p.metrics, endpointExchangeInfo, started, err)

	return symbols, err
}

func (p *BinanceProvider) listSymbols(ctx context.Context, market types.Market, baseURL string) ([]SymbolInfo, error) {
	host, err := hostOf(baseURL)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("Fetching symbol directory", zap.String("market", market.String()), zap.String("host", host))

	switch market {
	case types.MarketSpot:
		info, err := p.spotClient(host).NewExchangeInfoService().Do(ctx)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeRemoteUnavailable, err, "failed to fetch %s exchange info", market)
		}

		symbols := make([]SymbolInfo, 0, len(info.Symbols))
		for _, s := range info.Symbols {
			symbols = append(symbols, SymbolInfo{Symbol: s.Symbol, Status: statusOf(s.Status)})
		}

		return symbols, nil
	case types.MarketUsdFutures:
		info, err := p.futuresClient(host).NewExchangeInfoService().Do(ctx)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeRemoteUnavailable, err, "failed to fetch %s exchange info", market)
		}

		symbols := make([]SymbolInfo, 0, len(info.Symbols))
		for _, s := range info.Symbols {
			symbols = append(symbols, SymbolInfo{Symbol: s.Symbol, Status: statusOf(s.Status)})
		}

		return symbols, nil
	default:
		return nil, unsupportedMarket(market)
	}
}

// FetchPage fetches one page of klines.
func (p *BinanceProvider) FetchPage(ctx context.Context, req types.FetchRequest) ([]types.Candle, error) {
	started := time.Now()
	candles, err := p.fetchPage(ctx, req)
	observe(p.metrics, endpointKlines, started, err)

	if err == nil {
		p.metrics.AddCandles(len(candles))
	}

	return candles, err
}

func (p *BinanceProvider) fetchPage(ctx context.Context, req types.FetchRequest) ([]types.Candle, error) {
	if req.ContractType != "" {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter,
			"contract type %q requires the rest transport", req.ContractType)
	}

	host, err := hostOf(req.APIBaseURL)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("Fetching klines",
		zap.String("symbol", req.Symbol),
		zap.String("market", req.Market.String()),
		zap.Int64("cursor", req.StartTime),
	)

	switch req.Market {
	case types.MarketSpot:
		klines, err := p.spotClient(host).NewKlinesService().
			Symbol(req.Symbol).
			Interval(req.Interval).
			StartTime(req.StartTime).
			EndTime(req.EndTime).
			Limit(types.KlineLimit).
			Do(ctx)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeFetchFailed, err, "failed to fetch klines for %s", req.Symbol)
		}

		return mapKlines(klines, candleFromSpot), nil
	case types.MarketUsdFutures:
		klines, err := p.futuresClient(host).NewKlinesService().
			Symbol(req.Symbol).
			Interval(req.Interval).
			StartTime(req.StartTime).
			EndTime(req.EndTime).
			Limit(types.KlineLimit).
			Do(ctx)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeFetchFailed, err, "failed to fetch klines for %s", req.Symbol)
		}

		return mapKlines(klines, candleFromFutures), nil
	default:
		return nil, unsupportedMarket(req.Market)
	}
}

func (p *BinanceProvider) spotClient(host string) *binance.Client {
	client := binance.NewClient("", "")
	client.BaseURL = host
	client.HTTPClient = p.httpClient

	return client
}

func (p *BinanceProvider) futuresClient(host string) *futures.Client {
	client := futures.NewClient("", "")
	client.BaseURL = host
	client.HTTPClient = p.httpClient

	return client
}

func mapKlines[K any](klines []K, convert func(K) types.Candle) []types.Candle {
	candles := make([]types.Candle, 0, len(klines))
	for _, k := range klines {
		candles = append(candles, convert(k))
	}

	return candles
}

func candleFromSpot(k *binance.Kline) types.Candle {
	return types.Candle{
		OpenTime:                 k.OpenTime,
		Open:                     k.Open,
		High:                     k.High,
		Low:                      k.Low,
		Close:                    k.Close,
		Volume:                   k.Volume,
		CloseTime:                k.CloseTime,
		QuoteAssetVolume:         k.QuoteAssetVolume,
		NumberOfTrades:           k.TradeNum,
		TakerBuyBaseAssetVolume:  k.TakerBuyBaseAssetVolume,
		TakerBuyQuoteAssetVolume: k.TakerBuyQuoteAssetVolume,
	}
}

func candleFromFutures(k *futures.Kline) types.Candle {
	return types.Candle{
		OpenTime:                 k.OpenTime,
		Open:                     k.Open,
		High:                     k.High,
		Low:                      k.Low,
		Close:                    k.Close,
		Volume:                   k.Volume,
		CloseTime:                k.CloseTime,
		QuoteAssetVolume:         k.QuoteAssetVolume,
		NumberOfTrades:           k.TradeNum,
		TakerBuyBaseAssetVolume:  k.TakerBuyBaseAssetVolume,
		TakerBuyQuoteAssetVolume: k.TakerBuyQuoteAssetVolume,
	}
}

func unsupportedMarket(market types.Market) error {
	return errors.Newf(errors.ErrCodeInvalidParameter, "market %s requires the rest transport", market)
}

// statusOf maps an empty SDK status field to None.
func statusOf(status string) optional.Option[string] {
	if status == "" {
		return optional.None[string]()
	}

	return optional.Some(status)
}

// hostOf reduces a REST root such as https://api.binance.com/api/v3/ to
// https://api.binance.com.
func hostOf(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", errors.Newf(errors.ErrCodeInvalidConfiguration, "invalid API base URL %q", baseURL)
	}

	return u.Scheme + "://" + u.Host, nil
}
