package marketdata

import "github.com/rxtech-lab/kline-downloader/pkg/marketdata/provider"

// FilterTradable keeps the symbols whose status is absent or TRADING, in
// directory order.
func FilterTradable(infos []provider.SymbolInfo) []string {
	symbols := make([]string, 0, len(infos))

	for _, info := range infos {
		if info.Tradable() {
			symbols = append(symbols, info.Symbol)
		}
	}

	return symbols
}
