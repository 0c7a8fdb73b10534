package eventmodels

import (
	"encoding/json"
	"strings"
)

type StockSymbol string

func (s StockSymbol) String() string {
	return strings.ToUpper(string(s))
}

func (s StockSymbol) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func NewStockSymbol(s string) StockSymbol {
	return StockSymbol(strings.ToUpper(strings.TrimSpace(s)))
}

// NewStockSymbols normalizes a list of tickers, dropping blanks and duplicates.
func NewStockSymbols(tickers []string) []StockSymbol {
	seen := make(map[StockSymbol]struct{}, len(tickers))
	var symbols []StockSymbol

	for _, t := range tickers {
		sym := NewStockSymbol(t)
		if sym == "" {
			continue
		}

		if _, ok := seen[sym]; ok {
			continue
		}

		seen[sym] = struct{}{}
		symbols = append(symbols, sym)
	}

	return symbols
}
