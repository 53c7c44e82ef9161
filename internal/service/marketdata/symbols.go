package marketdata

// yahooSymbols maps logical instrument tickers to their Yahoo Finance symbols.
var yahooSymbols = map[string]string{
	"VIX":      "^VIX",
	"MXUS":     "MXUS.L",
	"MXEU":     "MXEU.SW",
	"MXJP":     "MXJP.L",
	"MXCN":     "^MXCN",
	"XAU BGNL": "GC=F",
	"Cl1":      "CL=F",
	"USGG10YR": "^TNX",
	"DXY":      "DX-Y.NYB",
	"BDIY":     "BDI.L",
}

// multipliers corrects the raw price scale of a few indices.
var multipliers = map[string]float64{
	"MXUS": 10,
	"MXJP": 10,
}

// ProviderSymbol returns the provider symbol for a ticker; unknown tickers pass through.
func ProviderSymbol(ticker string) string {
	if s, ok := yahooSymbols[ticker]; ok {
		return s
	}
	return ticker
}

// Multiplier returns the price multiplier for a ticker (1 if none).
func Multiplier(ticker string) float64 {
	if m, ok := multipliers[ticker]; ok {
		return m
	}
	return 1
}
