package provider

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/kline-downloader/internal/logger"
	"github.com/rxtech-lab/kline-downloader/internal/metrics"
	"github.com/rxtech-lab/kline-downloader/internal/types"
	"github.com/rxtech-lab/kline-downloader/pkg/errors"
)

// Transport selects how requests reach the exchange.
type Transport string

const (
	// TransportREST issues plain HTTP requests against any base URL.
	TransportREST Transport = "rest"
	// TransportSDK uses the go-binance clients.
	TransportSDK Transport = "sdk"
)

const (
	endpointKlines       = "klines"
	endpointExchangeInfo = "exchangeInfo"
)

// StatusTrading is the exchangeInfo status of a symbol open for trading.
const StatusTrading = "TRADING"

// SymbolInfo is one entry of the exchange's symbol directory.
// Status is None when the market does not report one.
type SymbolInfo struct {
	Symbol string
	Status optional.Option[string]
}

// Tradable reports whether the symbol has no status or is TRADING.
func (s SymbolInfo) Tradable() bool {
	if s.Status.IsNone() {
		return true
	}

	return s.Status.Unwrap() == StatusTrading
}

// Provider fetches the symbol directory and kline pages from an exchange.
type Provider interface {
	// ListSymbols returns every symbol listed at baseURL, in API order.
	ListSymbols(ctx context.Context, market types.Market, baseURL string) ([]SymbolInfo, error)
	// FetchPage returns at most types.KlineLimit candles starting at req.StartTime.
	FetchPage(ctx context.Context, req types.FetchRequest) ([]types.Candle, error)
}

// Config configures a Provider.
type Config struct {
	Transport Transport
	Timeout   time.Duration
	UserAgent string
	Metrics   *metrics.Metrics
	Logger    *logger.Logger
}

func (c Config) withDefaults() Config {
	if c.Transport == "" {
		c.Transport = TransportREST
	}

	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}

	if c.Logger == nil {
		c.Logger = logger.NewNop()
	}

	return c
}

// New creates a provider for the configured transport.
func New(config Config) (Provider, error) {
	config = config.withDefaults()

	switch config.Transport {
	case TransportREST:
		return NewRESTProvider(config), nil
	case TransportSDK:
		return NewBinanceProvider(config), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unsupported transport: %s", config.Transport)
	}
}

func observe(m *metrics.Metrics, endpoint string, started time.Time, err error) {
	outcome := metrics.OutcomeSuccess

	switch {
	case err == nil:
	case errors.HasCode(err, errors.ErrCodeMalformedResponse):
		outcome = metrics.OutcomeMalformed
	default:
		outcome = metrics.OutcomeError
	}

	m.ObserveRequest(endpoint, outcome, time.Since(started))
}
