package marketdata

import (
	"github.com/rxtech-lab/kline-downloader/internal/types"
)

// MarketInfo contains metadata about a supported market.
type MarketInfo struct {
	Name           string `json:"name"`
	Flag           string `json:"flag"`
	DisplayName    string `json:"displayName"`
	Description    string `json:"description"`
	DefaultBaseURL string `json:"defaultBaseUrl"`
	// ContractTypes reports whether klines requests carry a contractType.
	ContractTypes bool `json:"contractTypes"`
	// SDK reports whether the go-binance transport can serve the market.
	SDK bool `json:"sdk"`
}

// marketRegistry holds metadata about all supported markets.
var marketRegistry = map[types.Market]MarketInfo{
	types.MarketSpot: {
		Name:           types.MarketSpot.String(),
		Flag:           types.MarketSpot.Flag(),
		DisplayName:    "Spot",
		Description:    "Binance spot market",
		DefaultBaseURL: SpotAPIBaseURL,
		ContractTypes:  false,
		SDK:            true,
	},
	types.MarketUsdFutures: {
		Name:           types.MarketUsdFutures.String(),
		Flag:           types.MarketUsdFutures.Flag(),
		DisplayName:    "USD-M Futures",
		Description:    "USDT and USDC margined perpetual and delivery futures",
		DefaultBaseURL: UsdFuturesAPIBaseURL,
		ContractTypes:  true,
		SDK:            true,
	},
	types.MarketCoinFutures: {
		Name:           types.MarketCoinFutures.String(),
		Flag:           types.MarketCoinFutures.Flag(),
		DisplayName:    "COIN-M Futures",
		Description:    "Coin margined perpetual and delivery futures",
		DefaultBaseURL: CoinFuturesAPIBaseURL,
		ContractTypes:  true,
		SDK:            false,
	},
}

// GetSupportedMarkets returns metadata for every market in a stable order.
func GetSupportedMarkets() []MarketInfo {
	markets := make([]MarketInfo, 0, len(types.Markets))
	for _, market := range types.Markets {
		markets = append(markets, marketRegistry[market])
	}

	return markets
}

// GetMarketInfo returns metadata for a market given any accepted spelling.
func GetMarketInfo(name string) (MarketInfo, error) {
	market, err := types.ParseMarket(name)
	if err != nil {
		return MarketInfo{}, err
	}

	return marketRegistry[market], nil
}
