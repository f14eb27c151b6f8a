package marketdata

import (
	"github.com/rxtech-lab/kline-downloader/internal/types"
	"github.com/rxtech-lab/kline-downloader/pkg/errors"
)

const (
	SpotAPIBaseURL        = "https://api.binance.com/api/v3/"
	UsdFuturesAPIBaseURL  = "https://fapi.binance.com/fapi/v1/"
	CoinFuturesAPIBaseURL = "https://dapi.binance.com/dapi/v1/"
)

// Endpoints maps each market to its REST root. Roots end with a slash and
// endpoint names are appended directly ({base}klines).
type Endpoints map[types.Market]string

// DefaultEndpoints returns the public Binance REST roots.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		types.MarketSpot:        SpotAPIBaseURL,
		types.MarketUsdFutures:  UsdFuturesAPIBaseURL,
		types.MarketCoinFutures: CoinFuturesAPIBaseURL,
	}
}

// BaseURL returns the REST root configured for market.
func (e Endpoints) BaseURL(market types.Market) (string, error) {
	url, ok := e[market]
	if !ok || url == "" {
		return "", errors.Newf(errors.ErrCodeInvalidConfiguration, "no API base URL configured for market %s", market)
	}

	return url, nil
}
