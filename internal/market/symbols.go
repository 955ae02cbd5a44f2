// Package market defines the static symbol universe: NSE equities, the four
// tracked indices, commodity/currency pairs, and per-source identifier maps.
package market

import "strings"

// Equities is the tracked NSE stock list, Yahoo-style ".NS" suffixed.
var Equities = []string{
	"RELIANCE.NS", "TCS.NS", "HDFCBANK.NS", "ICICIBANK.NS", "INFY.NS",
	"LT.NS", "ITC.NS", "HINDUNILVR.NS", "BAJFINANCE.NS", "WIPRO.NS",
	"KOTAKBANK.NS", "AXISBANK.NS", "SUNPHARMA.NS", "MARUTI.NS", "ASIANPAINT.NS",
	"TATAMOTORS.NS", "NTPC.NS", "ONGC.NS", "M&M.NS", "TITAN.NS",
	"JSWSTEEL.NS", "TATASTEEL.NS", "POWERGRID.NS", "BHARTIARTL.NS", "HCLTECH.NS",
	"ADANIPORTS.NS", "ADANIENT.NS", "SBIN.NS", "BAJAJFINSV.NS",
	"DRREDDY.NS", "CIPLA.NS", "DIVISLAB.NS", "EICHERMOT.NS", "HEROMOTOCO.NS",
	"HINDALCO.NS", "COALINDIA.NS", "BPCL.NS", "GRASIM.NS", "TECHM.NS",
	"ULTRACEMCO.NS", "INDUSINDBK.NS", "TATACONSUM.NS", "VEDL.NS",
	"ZOMATO.NS", "PAYTM.NS", "IRCTC.NS", "HAL.NS", "DLF.NS",
	"DMART.NS", "TRENT.NS", "SBILIFE.NS", "ADANIPOWER.NS",
	"PERSISTENT.NS", "COFORGE.NS", "APOLLOHOSP.NS",
	"PNB.NS", "BANKBARODA.NS", "CANBK.NS",
}

// IndexSymbols maps logical index names to Yahoo symbols.
var IndexSymbols = map[string]string{
	"nifty":     "^NSEI",
	"sensex":    "^BSESN",
	"banknifty": "^NSEBANK",
	"vix":       "^INDIAVIX",
}

// CommoditySymbols maps Yahoo symbols to display names.
var CommoditySymbols = map[string]string{
	"USDINR=X": "INR / USD",
	"EURINR=X": "INR / EUR",
	"GC=F":     "GOLD",
	"SI=F":     "SILVER",
	"CL=F":     "CRUDE OIL",
	"NG=F":     "NATURAL GAS",
}

// GoogleFinanceIDs maps Yahoo index symbols to Google Finance quote ids.
var GoogleFinanceIDs = map[string]string{
	"^NSEI":     "NIFTY_50:INDEXNSE",
	"^BSESN":    "SENSEX:INDEXBOM",
	"^NSEBANK":  "NIFTY_BANK:INDEXNSE",
	"^INDIAVIX": "INDIAVIX:INDEXNSE",
}

// FlagshipEquities are the high-liquidity names worth cross-verifying
// every cycle.
var FlagshipEquities = []string{
	"RELIANCE.NS", "TCS.NS", "HDFCBANK.NS", "INFY.NS", "ICICIBANK.NS",
}

// UpstoxIndexKeys maps logical index names to Upstox instrument keys.
var UpstoxIndexKeys = map[string]string{
	"nifty":     "NSE_INDEX|Nifty 50",
	"sensex":    "BSE_INDEX|SENSEX",
	"banknifty": "NSE_INDEX|Nifty Bank",
	"vix":       "NSE_INDEX|India VIX",
}

// UpstoxStockMap maps Yahoo symbols to Upstox ISIN-based instrument keys.
var UpstoxStockMap = map[string]string{
	"RELIANCE.NS":   "NSE_EQ|INE002A01018",
	"TCS.NS":        "NSE_EQ|INE467B01029",
	"HDFCBANK.NS":   "NSE_EQ|INE040A01034",
	"ICICIBANK.NS":  "NSE_EQ|INE090A01021",
	"INFY.NS":       "NSE_EQ|INE009A01021",
	"ITC.NS":        "NSE_EQ|INE154A01025",
	"SBIN.NS":       "NSE_EQ|INE062A01020",
	"BHARTIARTL.NS": "NSE_EQ|INE397D01024",
	"LT.NS":         "NSE_EQ|INE018A01030",
	"KOTAKBANK.NS":  "NSE_EQ|INE237A01028",
}

// GrowwStockMap maps Yahoo symbols to Groww trading symbols.
var GrowwStockMap = map[string]string{
	"RELIANCE.NS":   "RELIANCE",
	"TCS.NS":        "TCS",
	"HDFCBANK.NS":   "HDFCBANK",
	"ICICIBANK.NS":  "ICICIBANK",
	"INFY.NS":       "INFY",
	"ITC.NS":        "ITC",
	"SBIN.NS":       "SBIN",
	"BHARTIARTL.NS": "BHARTIARTL",
	"LT.NS":         "LT",
	"KOTAKBANK.NS":  "KOTAKBANK",
	"HINDUNILVR.NS": "HINDUNILVR",
	"BAJFINANCE.NS": "BAJFINANCE",
	"WIPRO.NS":      "WIPRO",
	"AXISBANK.NS":   "AXISBANK",
	"SUNPHARMA.NS":  "SUNPHARMA",
	"MARUTI.NS":     "MARUTI",
	"TATAMOTORS.NS": "TATAMOTORS",
	"TITAN.NS":      "TITAN",
	"ADANIENT.NS":   "ADANIENT",
	"NTPC.NS":       "NTPC",
}

// GrowwIndexMap maps Yahoo index symbols to Groww index symbols.
// SENSEX trades on BSE, the rest on NSE.
var GrowwIndexMap = map[string]string{
	"^NSEI":    "NIFTY",
	"^BSESN":   "SENSEX",
	"^NSEBANK": "BANKNIFTY",
}

// Universe returns every symbol the aggregator refreshes: equities,
// index symbols, then commodities.
func Universe() []string {
	syms := make([]string, 0, len(Equities)+len(IndexSymbols)+len(CommoditySymbols))
	syms = append(syms, Equities...)
	for _, s := range IndexSymbols {
		syms = append(syms, s)
	}
	for s := range CommoditySymbols {
		syms = append(syms, s)
	}
	return syms
}

// IndexNameFor returns the logical name ("nifty") for an index symbol.
func IndexNameFor(symbol string) (string, bool) {
	for name, sym := range IndexSymbols {
		if sym == symbol {
			return name, true
		}
	}
	return "", false
}

// IsIndex reports whether symbol is one of the tracked indices.
func IsIndex(symbol string) bool {
	_, ok := IndexNameFor(symbol)
	return ok
}

// IsCommodity reports whether symbol is a tracked commodity or currency pair.
func IsCommodity(symbol string) bool {
	_, ok := CommoditySymbols[symbol]
	return ok
}

// ShortName derives a display name from a Yahoo symbol.
func ShortName(symbol string) string {
	if name, ok := CommoditySymbols[symbol]; ok {
		return name
	}
	if name, ok := IndexNameFor(symbol); ok {
		return strings.ToUpper(name)
	}
	return strings.TrimSuffix(symbol, ".NS")
}

// GoogleFinanceID resolves a symbol to its Google Finance quote id.
// Unmapped NSE equities fall back to the SYMBOL:NSE form.
func GoogleFinanceID(symbol string) (string, bool) {
	if id, ok := GoogleFinanceIDs[symbol]; ok {
		return id, true
	}
	if strings.HasSuffix(symbol, ".NS") {
		return strings.TrimSuffix(symbol, ".NS") + ":NSE", true
	}
	return "", false
}
