package provider

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/kline-downloader/internal/types"
	"github.com/rxtech-lab/kline-downloader/pkg/errors"
	"github.com/tidwall/gjson"
)

// klineFields is the number of tuple fields mapped onto types.Candle.
// Exchanges send a twelfth, unused field which is ignored.
const klineFields = 11

// DecodeKlines parses a klines response body: an array of tuples
// [openTime, open, high, low, close, volume, closeTime, quoteAssetVolume,
// trades, takerBuyBase, takerBuyQuote, ignore].
func DecodeKlines(body []byte) ([]types.Candle, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New(errors.ErrCodeMalformedResponse, "klines response is not valid JSON")
	}

	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, errors.Newf(errors.ErrCodeMalformedResponse, "klines response is not an array: %s", truncate(body))
	}

	rows := root.Array()
	candles := make([]types.Candle, 0, len(rows))

	for i, row := range rows {
		candle, err := decodeKline(row)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeMalformedResponse, err, "kline %d", i)
		}

		candles = append(candles, candle)
	}

	return candles, nil
}

func decodeKline(row gjson.Result) (types.Candle, error) {
	if !row.IsArray() {
		return types.Candle{}, errors.New(errors.ErrCodeMalformedResponse, "kline is not an array")
	}

	fields := row.Array()
	if len(fields) < klineFields {
		return types.Candle{}, errors.Newf(errors.ErrCodeMalformedResponse, "kline has %d fields, expected at least %d", len(fields), klineFields)
	}

	d := tupleDecoder{fields: fields}
	candle := types.Candle{
		OpenTime:                 d.integer(0),
		Open:                     d.text(1),
		High:                     d.text(2),
		Low:                      d.text(3),
		Close:                    d.text(4),
		Volume:                   d.text(5),
		CloseTime:                d.integer(6),
		QuoteAssetVolume:         d.text(7),
		NumberOfTrades:           d.integer(8),
		TakerBuyBaseAssetVolume:  d.text(9),
		TakerBuyQuoteAssetVolume: d.text(10),
	}

	return candle, d.err
}

// tupleDecoder reads typed fields and keeps the first mismatch.
type tupleDecoder struct {
	fields []gjson.Result
	err    error
}

func (d *tupleDecoder) integer(i int) int64 {
	f := d.fields[i]
	if f.Type != gjson.Number {
		d.fail(i, "number", f)

		return 0
	}

	return f.Int()
}

func (d *tupleDecoder) text(i int) string {
	f := d.fields[i]
	if f.Type != gjson.String {
		d.fail(i, "string", f)

		return ""
	}

	return f.Str
}

func (d *tupleDecoder) fail(i int, want string, got gjson.Result) {
	if d.err != nil {
		return
	}

	d.err = errors.Newf(errors.ErrCodeMalformedResponse, "field %d: expected %s, got %s", i, want, got.Type)
}

// DecodeExchangeInfo parses the symbols array of an exchangeInfo response.
func DecodeExchangeInfo(body []byte) ([]SymbolInfo, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New(errors.ErrCodeMalformedResponse, "exchangeInfo response is not valid JSON")
	}

	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, errors.Newf(errors.ErrCodeMalformedResponse, "exchangeInfo response is not an object: %s", truncate(body))
	}

	list := root.Get("symbols")
	if !list.IsArray() {
		return nil, errors.New(errors.ErrCodeMalformedResponse, "exchangeInfo response has no symbols array")
	}

	entries := list.Array()
	symbols := make([]SymbolInfo, 0, len(entries))

	for i, entry := range entries {
		name := entry.Get("symbol")
		if !entry.IsObject() || name.Type != gjson.String {
			return nil, errors.Newf(errors.ErrCodeMalformedResponse, "symbols[%d] has no string symbol", i)
		}

		info := SymbolInfo{Symbol: name.Str, Status: optional.None[string]()}

		status := entry.Get("status")
		if status.Exists() {
			if status.Type != gjson.String {
				return nil, errors.Newf(errors.ErrCodeMalformedResponse, "symbols[%d].status is not a string", i)
			}

			info.Status = optional.Some(status.Str)
		}

		symbols = append(symbols, info)
	}

	return symbols, nil
}

func truncate(body []byte) string {
	const limit = 256
	if len(body) <= limit {
		return string(body)
	}

	return string(body[:limit]) + "..."
}
