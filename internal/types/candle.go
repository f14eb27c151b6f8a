package types

import (
	"strconv"
	"time"
)

// KlineLimit is the page size requested from the exchange. A page shorter than
// this is the last one.
const KlineLimit = 1000

// LegacyHeader is the column layout written by earlier releases. Column 7 holds
// the close time but is labelled "Close"; it is kept so existing readers keep working.
var LegacyHeader = []string{
	"Open_Time",
	"Open",
	"High",
	"Low",
	"Close",
	"Volume",
	"Close",
	"Quote_Asset_Volume",
	"Number_Of_Trades",
	"Taker_Buy_Base_Asset_Volume",
	"Taker_Buy_Quote_Asset_Volume",
}

// CorrectedHeader is LegacyHeader with column 7 labelled after its content.
var CorrectedHeader = []string{
	"Open_Time",
	"Open",
	"High",
	"Low",
	"Close",
	"Volume",
	"Close_Time",
	"Quote_Asset_Volume",
	"Number_Of_Trades",
	"Taker_Buy_Base_Asset_Volume",
	"Taker_Buy_Quote_Asset_Volume",
}

// Header returns the header row for the requested layout.
func Header(corrected bool) []string {
	if corrected {
		return append([]string(nil), CorrectedHeader...)
	}

	return append([]string(nil), LegacyHeader...)
}

// Candle is one kline as returned by the exchange. Prices and volumes are kept
// as strings so the exchange-provided precision survives the round trip.
// The twelfth field of the raw tuple is unused by the exchange and dropped.
type Candle struct {
	OpenTime                 int64  `json:"openTime"`
	Open                     string `json:"open"`
	High                     string `json:"high"`
	Low                      string `json:"low"`
	Close                    string `json:"close"`
	Volume                   string `json:"volume"`
	CloseTime                int64  `json:"closeTime"`
	QuoteAssetVolume         string `json:"quoteAssetVolume"`
	NumberOfTrades           int64  `json:"numberOfTrades"`
	TakerBuyBaseAssetVolume  string `json:"takerBuyBaseAssetVolume"`
	TakerBuyQuoteAssetVolume string `json:"takerBuyQuoteAssetVolume"`
}

// OpenedAt returns the open time as a UTC instant.
func (c Candle) OpenedAt() time.Time {
	return time.UnixMilli(c.OpenTime).UTC()
}

// Record encodes the candle in header column order.
func (c Candle) Record() []string {
	return []string{
		strconv.FormatInt(c.OpenTime, 10),
		c.Open,
		c.High,
		c.Low,
		c.Close,
		c.Volume,
		strconv.FormatInt(c.CloseTime, 10),
		c.QuoteAssetVolume,
		strconv.FormatInt(c.NumberOfTrades, 10),
		c.TakerBuyBaseAssetVolume,
		c.TakerBuyQuoteAssetVolume,
	}
}

// Series is the ordered candle sequence accumulated for one symbol.
// StartTime is the start of the original request, not of the last page.
type Series struct {
	Symbol    string
	StartTime int64
	Candles   []Candle
}

// Len returns the number of candles in the series.
func (s Series) Len() int {
	return len(s.Candles)
}
