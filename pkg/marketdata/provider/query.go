package provider

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/rxtech-lab/kline-downloader/internal/types"
)

// QueryParam is one key/value pair of a klines query.
type QueryParam struct {
	Key   string
	Value string
}

// QueryParams keeps the klines parameters in the order the exchange documents them.
type QueryParams []QueryParam

// BuildQuery returns the query for one klines page: symbol, interval,
// startTime, endTime, limit and, for futures markets, contractType. The
// contract type is sent even when empty.
func BuildQuery(req types.FetchRequest) QueryParams {
	params := QueryParams{
		{Key: "symbol", Value: req.Symbol},
		{Key: "interval", Value: req.Interval},
		{Key: "startTime", Value: strconv.FormatInt(req.StartTime, 10)},
		{Key: "endTime", Value: strconv.FormatInt(req.EndTime, 10)},
		{Key: "limit", Value: strconv.Itoa(types.KlineLimit)},
	}

	if req.Market.IsFutures() {
		params = append(params, QueryParam{Key: "contractType", Value: req.ContractType})
	}

	return params
}

// Get returns the value for key and whether it is present.
func (q QueryParams) Get(key string) (string, bool) {
	for _, p := range q {
		if p.Key == key {
			return p.Value, true
		}
	}

	return "", false
}

// Encode renders the query string without reordering the parameters.
func (q QueryParams) Encode() string {
	var sb strings.Builder

	for i, p := range q {
		if i > 0 {
			sb.WriteByte('&')
		}

		sb.WriteString(url.QueryEscape(p.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.Value))
	}

	return sb.String()
}

// Values converts the query into url.Values.
func (q QueryParams) Values() url.Values {
	values := make(url.Values, len(q))
	for _, p := range q {
		values.Add(p.Key, p.Value)
	}

	return values
}
