package provider_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rxtech-lab/kline-downloader/internal/metrics"
	"github.com/rxtech-lab/kline-downloader/internal/mockexchange"
	"github.com/rxtech-lab/kline-downloader/internal/types"
	"github.com/rxtech-lab/kline-downloader/mocks"
	"github.com/rxtech-lab/kline-downloader/pkg/errors"
	"github.com/rxtech-lab/kline-downloader/pkg/marketdata/provider"
	"github.com/stretchr/testify/suite"
)

type ProviderTestSuite struct {
	suite.Suite
	server  *mockexchange.Server
	start   time.Time
	candles []types.Candle
	metrics *metrics.Metrics
}

func TestProviderSuite(t *testing.T) {
	suite.Run(t, new(ProviderTestSuite))
}

func (suite *ProviderTestSuite) SetupTest() {
	suite.start = time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.candles = mocks.GenerateHourly(suite.start, 1500)
	suite.metrics = metrics.New()

	suite.server = mockexchange.New()
	suite.server.SetSymbols(
		mockexchange.Symbol{Name: "BTCUSDT", Status: provider.StatusTrading},
		mockexchange.Symbol{Name: "LUNAUSDT", Status: "BREAK"},
		mockexchange.Symbol{Name: "ETHUSDT", Status: provider.StatusTrading},
	)
	suite.server.SetCandles("BTCUSDT", suite.candles)
	suite.Require().NoError(suite.server.Start(""))
}

func (suite *ProviderTestSuite) TearDownTest() {
	suite.Require().NoError(suite.server.Stop())
}

func (suite *ProviderTestSuite) newProvider(transport provider.Transport) provider.Provider {
	p, err := provider.New(provider.Config{
		Transport: transport,
		Timeout:   5 * time.Second,
		UserAgent: "kline-downloader-test",
		Metrics:   suite.metrics,
	})
	suite.Require().NoError(err)

	return p
}

func (suite *ProviderTestSuite) request(market types.Market) types.FetchRequest {
	return types.FetchRequest{
		APIBaseURL: suite.server.APIBaseURL(market),
		Market:     market,
		Symbol:     "BTCUSDT",
		Interval:   "1h",
		StartTime:  suite.start.UnixMilli(),
		EndTime:    suite.start.Add(2000 * time.Hour).UnixMilli(),
	}
}

func (suite *ProviderTestSuite) TestNew() {
	rest, err := provider.New(provider.Config{})
	suite.Require().NoError(err)
	suite.IsType(&provider.RESTProvider{}, rest)

	sdk, err := provider.New(provider.Config{Transport: provider.TransportSDK})
	suite.Require().NoError(err)
	suite.IsType(&provider.BinanceProvider{}, sdk)

	_, err = provider.New(provider.Config{Transport: "carrier-pigeon"})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ProviderTestSuite) TestRESTFetchPage() {
	p := suite.newProvider(provider.TransportREST)

	page, err := p.FetchPage(context.Background(), suite.request(types.MarketSpot))
	suite.Require().NoError(err)
	suite.Require().Len(page, types.KlineLimit)
	suite.Equal(suite.candles[:types.KlineLimit], page)

	requests := suite.server.KlineRequests()
	suite.Require().Len(requests, 1)
	suite.Equal("/api/v3/klines", requests[0].Path)
	suite.Equal(provider.BuildQuery(suite.request(types.MarketSpot)).Encode(), requests[0].RawQuery)

	count, err := testutil.GatherAndCount(suite.metrics.Registry(), "klines_candles_fetched_total")
	suite.Require().NoError(err)
	suite.Equal(1, count)
}

func (suite *ProviderTestSuite) TestRESTFetchPageFromCursor() {
	p := suite.newProvider(provider.TransportREST)

	req := suite.request(types.MarketSpot).WithStartTime(suite.candles[999].OpenTime)
	page, err := p.FetchPage(context.Background(), req)
	suite.Require().NoError(err)
	suite.Require().Len(page, 501)
	suite.Equal(suite.candles[999], page[0])
	suite.Equal(suite.candles[1499], page[500])
}

func (suite *ProviderTestSuite) TestRESTFuturesSendsContractType() {
	p := suite.newProvider(provider.TransportREST)

	req := suite.request(types.MarketCoinFutures)
	req.ContractType = "PERPETUAL"

	_, err := p.FetchPage(context.Background(), req)
	suite.Require().NoError(err)

	requests := suite.server.KlineRequests()
	suite.Require().Len(requests, 1)
	suite.Equal("/dapi/v1/klines", requests[0].Path)
	suite.Equal("PERPETUAL", requests[0].Query.Get("contractType"))

	_, err = p.FetchPage(context.Background(), suite.request(types.MarketUsdFutures))
	suite.Require().NoError(err)

	requests = suite.server.KlineRequests()
	suite.Require().Len(requests, 2)
	suite.Contains(requests[1].RawQuery, "&contractType=")
}

func (suite *ProviderTestSuite) TestRESTFetchPageHTTPError() {
	p := suite.newProvider(provider.TransportREST)
	suite.server.QueueKlines(mockexchange.Response{
		Status: http.StatusTooManyRequests,
		Body:   `{"code":-1003,"msg":"Too many requests"}`,
	})

	_, err := p.FetchPage(context.Background(), suite.request(types.MarketSpot))
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeFetchFailed))
	suite.Contains(err.Error(), "BTCUSDT")
	suite.Contains(err.Error(), "429")
	suite.Contains(err.Error(), "Too many requests")
}

func (suite *ProviderTestSuite) TestRESTFetchPageMalformed() {
	p := suite.newProvider(provider.TransportREST)
	suite.server.QueueKlines(mockexchange.Response{Body: `[[1,2,3]]`})

	_, err := p.FetchPage(context.Background(), suite.request(types.MarketSpot))
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMalformedResponse))
	suite.True(errors.IsRetryable(err))
}

func (suite *ProviderTestSuite) TestRESTFetchPageUnreachable() {
	p := suite.newProvider(provider.TransportREST)
	req := suite.request(types.MarketSpot)
	req.APIBaseURL = "http://127.0.0.1:1/api/v3/"

	_, err := p.FetchPage(context.Background(), req)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeFetchFailed))
}

func (suite *ProviderTestSuite) TestRESTListSymbols() {
	p := suite.newProvider(provider.TransportREST)

	symbols, err := p.ListSymbols(context.Background(), types.MarketSpot, suite.server.APIBaseURL(types.MarketSpot))
	suite.Require().NoError(err)
	suite.Require().Len(symbols, 3)
	suite.Equal("BTCUSDT", symbols[0].Symbol)
	suite.Equal("BREAK", symbols[1].Status.Unwrap())
	suite.Equal("/api/v3/exchangeInfo", suite.server.Requests()[0].Path)
}

func (suite *ProviderTestSuite) TestRESTListSymbolsErrors() {
	p := suite.newProvider(provider.TransportREST)
	baseURL := suite.server.APIBaseURL(types.MarketSpot)

	suite.server.QueueExchangeInfo(mockexchange.Response{Status: http.StatusServiceUnavailable, Body: "maintenance"})
	_, err := p.ListSymbols(context.Background(), types.MarketSpot, baseURL)
	suite.True(errors.HasCode(err, errors.ErrCodeRemoteUnavailable))

	suite.server.QueueExchangeInfo(mockexchange.Response{Body: `{"symbols":"none"}`})
	_, err = p.ListSymbols(context.Background(), types.MarketSpot, baseURL)
	suite.True(errors.HasCode(err, errors.ErrCodeMalformedResponse))
}

func (suite *ProviderTestSuite) TestSDKFetchPageMatchesREST() {
	rest := suite.newProvider(provider.TransportREST)
	sdk := suite.newProvider(provider.TransportSDK)

	for _, market := range []types.Market{types.MarketSpot, types.MarketUsdFutures} {
		suite.Run(market.String(), func() {
			req := suite.request(market).WithStartTime(suite.candles[10].OpenTime)

			expected, err := rest.FetchPage(context.Background(), req)
			suite.Require().NoError(err)

			got, err := sdk.FetchPage(context.Background(), req)
			suite.Require().NoError(err)
			suite.Equal(expected, got)
		})
	}

	paths := make([]string, 0)
	for _, r := range suite.server.KlineRequests() {
		paths = append(paths, r.Path)
	}

	suite.Contains(paths, "/fapi/v1/klines")
}

func (suite *ProviderTestSuite) TestSDKListSymbols() {
	sdk := suite.newProvider(provider.TransportSDK)

	symbols, err := sdk.ListSymbols(context.Background(), types.MarketUsdFutures, suite.server.APIBaseURL(types.MarketUsdFutures))
	suite.Require().NoError(err)
	suite.Require().Len(symbols, 3)
	suite.Equal("LUNAUSDT", symbols[1].Symbol)
	suite.False(symbols[1].Tradable())
}

func (suite *ProviderTestSuite) TestSDKRejectsUnsupportedRequests() {
	sdk := suite.newProvider(provider.TransportSDK)

	req := suite.request(types.MarketUsdFutures)
	req.ContractType = "PERPETUAL"
	_, err := sdk.FetchPage(context.Background(), req)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))

	_, err = sdk.FetchPage(context.Background(), suite.request(types.MarketCoinFutures))
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))

	req = suite.request(types.MarketSpot)
	req.APIBaseURL = "not a url"
	_, err = sdk.FetchPage(context.Background(), req)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	suite.Empty(suite.server.KlineRequests())
}

func (suite *ProviderTestSuite) TestSDKFetchPageHTTPError() {
	sdk := suite.newProvider(provider.TransportSDK)
	suite.server.QueueKlines(mockexchange.Response{Status: http.StatusBadRequest, Body: `{"code":-1121,"msg":"Invalid symbol."}`})

	_, err := sdk.FetchPage(context.Background(), suite.request(types.MarketSpot))
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeFetchFailed))
}
