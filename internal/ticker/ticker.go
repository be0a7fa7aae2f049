// Package ticker normalises instrument identifiers and currencies between the
// portfolio's conventions and the quote provider's.
package ticker

import "strings"

// exchangeSuffixes maps exchange identifiers to the provider's ticker suffix.
// Exchanges whose tickers are quoted bare (US venues) map to "".
var exchangeSuffixes = map[string]string{
	"LSE":    ".L",
	"LON":    ".L",
	"XLON":   ".L",
	"NYSE":   "",
	"NASDAQ": "",
	"XETRA":  ".DE",
	"XETR":   ".DE",
	"EPA":    ".PA",
	"XPAR":   ".PA",
	"AMS":    ".AS",
	"XAMS":   ".AS",
	"SWX":    ".SW",
	"TSX":    ".TO",
	"ASX":    ".AX",
	"HKEX":   ".HK",
}

// penceCurrencies are currency codes meaning the price is quoted in pence.
// "GBp" is case-sensitive: "GBP" means pounds.
var penceCurrencies = map[string]bool{
	"GBX": true,
	"GBx": true,
	"gbx": true,
	"GBp": true,
}

// londonSuffix is the provider suffix for London Stock Exchange listings.
const londonSuffix = ".L"

// Normalize trims and upper-cases a ticker.
func Normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// FormatExchangeTicker rewrites a bare ticker into the provider's suffixed form
// for the given exchange, e.g. ("VUSA", "LSE") -> "VUSA.L".
// Tickers that already carry the suffix, and unknown exchanges, pass through
// unchanged apart from normalisation.
func FormatExchangeTicker(symbol, exchange string) string {
	sym := Normalize(symbol)
	suffix, ok := ExchangeSuffix(exchange)
	if !ok || suffix == "" || strings.HasSuffix(sym, suffix) {
		return sym
	}
	return sym + suffix
}

// ExchangeSuffix returns the provider suffix for exchange ("" for US venues)
// and whether the exchange is known.
func ExchangeSuffix(exchange string) (string, bool) {
	suffix, ok := exchangeSuffixes[strings.ToUpper(strings.TrimSpace(exchange))]
	return suffix, ok
}

// IsPenceCurrency reports whether currency is a pence code (GBX/GBp).
func IsPenceCurrency(currency string) bool {
	return penceCurrencies[strings.TrimSpace(currency)]
}

// IsPenceDenominated reports whether a quote for symbol in currency is priced
// in pence. An explicit currency decides; without one, London listings are
// assumed to be quoted in pence.
func IsPenceDenominated(symbol, currency string) bool {
	if strings.TrimSpace(currency) != "" {
		return IsPenceCurrency(currency)
	}
	return strings.HasSuffix(Normalize(symbol), londonSuffix)
}

// ConvertGbxToGbp converts a pence price to pounds. Prices in any other
// currency are returned unchanged.
func ConvertGbxToGbp(price float64, currency string) float64 {
	if IsPenceCurrency(currency) {
		return price / 100
	}
	return price
}

// NormalizePrice returns the pound-denominated price for a quote of symbol in currency.
func NormalizePrice(symbol string, price float64, currency string) float64 {
	if IsPenceDenominated(symbol, currency) {
		return price / 100
	}
	return price
}
