package marketdata

import (
	"testing"

	"github.com/rxtech-lab/kline-downloader/internal/types"
	"github.com/rxtech-lab/kline-downloader/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type EndpointsTestSuite struct {
	suite.Suite
}

func TestEndpointsSuite(t *testing.T) {
	suite.Run(t, new(EndpointsTestSuite))
}

func (suite *EndpointsTestSuite) TestDefaultEndpoints() {
	endpoints := DefaultEndpoints()

	for market, expected := range map[types.Market]string{
		types.MarketSpot:        "https://api.binance.com/api/v3/",
		types.MarketUsdFutures:  "https://fapi.binance.com/fapi/v1/",
		types.MarketCoinFutures: "https://dapi.binance.com/dapi/v1/",
	} {
		url, err := endpoints.BaseURL(market)
		suite.Require().NoError(err)
		suite.Equal(expected, url)
	}
}

func (suite *EndpointsTestSuite) TestMissingEndpoint() {
	endpoints := Endpoints{types.MarketSpot: "http://localhost/api/v3/", types.MarketUsdFutures: ""}

	_, err := endpoints.BaseURL(types.MarketUsdFutures)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	_, err = endpoints.BaseURL(types.MarketCoinFutures)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *EndpointsTestSuite) TestMarketRegistry() {
	markets := GetSupportedMarkets()
	suite.Require().Len(markets, 3)
	suite.Equal("Spot", markets[0].Name)
	suite.Equal("coin-futures", markets[2].Flag)
	suite.False(markets[2].SDK)

	info, err := GetMarketInfo("usd-futures")
	suite.Require().NoError(err)
	suite.Equal(UsdFuturesAPIBaseURL, info.DefaultBaseURL)
	suite.True(info.ContractTypes)

	_, err = GetMarketInfo("options")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidMarket))
}
