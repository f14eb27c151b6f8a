package mockexchange

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/rxtech-lab/kline-downloader/internal/types"
	"github.com/rxtech-lab/kline-downloader/mocks"
	"github.com/stretchr/testify/suite"
)

type ServerTestSuite struct {
	suite.Suite
	server *Server
	start  time.Time
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (suite *ServerTestSuite) SetupTest() {
	suite.start = time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.server = New()
	suite.server.SetSymbols(Symbol{Name: "BTCUSDT", Status: "TRADING"}, Symbol{Name: "OLDUSDT", Status: "BREAK"}, Symbol{Name: "ETHUSDT"})
	suite.server.SetCandles("BTCUSDT", mocks.GenerateHourly(suite.start, 30))
	suite.Require().NoError(suite.server.Start(""))
}

func (suite *ServerTestSuite) TearDownTest() {
	suite.Require().NoError(suite.server.Stop())
}

func (suite *ServerTestSuite) get(url string) (int, []byte) {
	resp, err := http.Get(url)
	suite.Require().NoError(err)

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	suite.Require().NoError(err)

	return resp.StatusCode, body
}

func (suite *ServerTestSuite) TestExchangeInfo() {
	status, body := suite.get(suite.server.APIBaseURL(types.MarketSpot) + "exchangeInfo")
	suite.Equal(http.StatusOK, status)

	var info struct {
		Symbols []map[string]string `json:"symbols"`
	}
	suite.Require().NoError(json.Unmarshal(body, &info))
	suite.Require().Len(info.Symbols, 3)
	suite.Equal("BTCUSDT", info.Symbols[0]["symbol"])
	suite.Equal("TRADING", info.Symbols[0]["status"])

	_, hasStatus := info.Symbols[2]["status"]
	suite.False(hasStatus)
}

func (suite *ServerTestSuite) TestKlinesInclusiveBoundsAndLimit() {
	start := suite.start.Add(2 * time.Hour).UnixMilli()
	end := suite.start.Add(6 * time.Hour).UnixMilli()

	url := suite.server.APIBaseURL(types.MarketUsdFutures) + "klines?symbol=BTCUSDT&interval=1h&startTime=" +
		itoa(start) + "&endTime=" + itoa(end) + "&limit=3"
	status, body := suite.get(url)
	suite.Equal(http.StatusOK, status)

	var rows [][]any
	suite.Require().NoError(json.Unmarshal(body, &rows))
	suite.Require().Len(rows, 3)
	suite.Len(rows[0], 12)
	suite.Equal(float64(start), rows[0][0])

	url = suite.server.APIBaseURL(types.MarketSpot) + "klines?symbol=BTCUSDT&interval=1h&startTime=" +
		itoa(start) + "&endTime=" + itoa(end)
	_, body = suite.get(url)
	suite.Require().NoError(json.Unmarshal(body, &rows))
	suite.Len(rows, 5)
	suite.Equal(float64(end), rows[4][0])
}

func (suite *ServerTestSuite) TestUnknownSymbol() {
	status, body := suite.get(suite.server.APIBaseURL(types.MarketSpot) + "klines?symbol=NOPE&interval=1h")
	suite.Equal(http.StatusBadRequest, status)
	suite.Contains(string(body), "Invalid symbol")
}

func (suite *ServerTestSuite) TestQueuedResponses() {
	suite.server.QueueKlines(Response{Status: http.StatusTooManyRequests, Body: `{"code":-1003,"msg":"Too many requests"}`})

	url := suite.server.APIBaseURL(types.MarketSpot) + "klines?symbol=BTCUSDT&interval=1h"
	status, _ := suite.get(url)
	suite.Equal(http.StatusTooManyRequests, status)

	status, _ = suite.get(url)
	suite.Equal(http.StatusOK, status)
}

func (suite *ServerTestSuite) TestRequestLog() {
	suite.get(suite.server.APIBaseURL(types.MarketCoinFutures) + "klines?symbol=BTCUSDT&interval=1h&limit=1000&contractType=")
	suite.get(suite.server.APIBaseURL(types.MarketCoinFutures) + "exchangeInfo")

	suite.Len(suite.server.Requests(), 2)

	klines := suite.server.KlineRequests()
	suite.Require().Len(klines, 1)
	suite.Equal("/dapi/v1/klines", klines[0].Path)
	suite.Equal("symbol=BTCUSDT&interval=1h&limit=1000&contractType=", klines[0].RawQuery)

	suite.server.ResetRequests()
	suite.Empty(suite.server.Requests())
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
