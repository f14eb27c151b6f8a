package types

import (
	"strings"

	"github.com/rxtech-lab/kline-downloader/pkg/errors"
)

// Market is the trading venue category. It selects the API root and whether
// kline requests carry a contract type.
type Market string

const (
	MarketSpot        Market = "Spot"
	MarketUsdFutures  Market = "UsdFutures"
	MarketCoinFutures Market = "CoinFutures"
)

// Markets lists every supported market in display order.
var Markets = []Market{MarketSpot, MarketUsdFutures, MarketCoinFutures}

// String returns the name used in output file names.
func (m Market) String() string {
	return string(m)
}

// Flag returns the command line spelling of the market.
func (m Market) Flag() string {
	switch m {
	case MarketSpot:
		return "spot"
	case MarketUsdFutures:
		return "usd-futures"
	case MarketCoinFutures:
		return "coin-futures"
	default:
		return strings.ToLower(string(m))
	}
}

// IsFutures reports whether kline queries for this market need a contract type.
func (m Market) IsFutures() bool {
	return m == MarketUsdFutures || m == MarketCoinFutures
}

// ParseMarket accepts either the command line spelling (spot, usd-futures,
// coin-futures) or the display name, case-insensitively.
func ParseMarket(value string) (Market, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.NewReplacer("-", "", "_", "").Replace(normalized)

	for _, m := range Markets {
		if strings.ToLower(string(m)) == normalized {
			return m, nil
		}
	}

	return "", errors.Newf(errors.ErrCodeInvalidMarket, "unsupported market %q, expected one of spot, usd-futures, coin-futures", value)
}
