package news

import "strings"

var positiveKeywords = []string{
	"surge", "jump", "rally", "gain", "rise", "soar", "boom", "bullish",
	"record", "high", "profit", "growth", "upgrade", "beat", "strong",
	"inflow", "optimis", "positive", "bull run",
}

var negativeKeywords = []string{
	"crash", "fall", "drop", "slump", "plunge", "decline", "loss", "bearish",
	"low", "cut", "downgrade", "miss", "weak", "outflow", "recession",
	"fear", "warning", "negative", "sell-off", "selloff",
}

// ClassifyImpact scores a headline by keyword counts. Ties are neutral.
func ClassifyImpact(title, summary string) string {
	text := strings.ToLower(title + " " + summary)
	pos, neg := 0, 0
	for _, kw := range positiveKeywords {
		if strings.Contains(text, kw) {
			pos++
		}
	}
	for _, kw := range negativeKeywords {
		if strings.Contains(text, kw) {
			neg++
		}
	}
	switch {
	case pos > neg:
		return "positive"
	case neg > pos:
		return "negative"
	default:
		return "neutral"
	}
}

var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"Earnings", []string{"earnings", "quarter", "profit", "revenue", "result", "q1", "q2", "q3", "q4", "fy"}},
	{"Policy", []string{"rbi", "sebi", "policy", "regulation", "tax", "government", "budget", "reform"}},
	{"Global", []string{"global", "us ", "china", "fed ", "dollar", "world", "international", "europe"}},
	{"Sector", []string{"sector", "industry", "auto", "pharma", "bank", "it ", "fmcg", "metal", "oil", "energy"}},
}

// ClassifyCategory buckets a headline; unmatched text keeps the feed's
// own category.
func ClassifyCategory(title, summary, feedCategory string) string {
	text := strings.ToLower(title + " " + summary)
	for _, c := range categoryKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(text, kw) {
				return c.category
			}
		}
	}
	return feedCategory
}

// knownNames are company mentions worth tagging, including common press
// aliases that map back to the trading symbol.
var knownNames = []string{
	"RELIANCE", "TCS", "HDFCBANK", "ICICIBANK", "INFY", "INFOSYS", "ITC",
	"MARUTI", "SUNPHARMA", "TATAMOTORS", "TATA MOTORS", "BAJFINANCE",
	"WIPRO", "AXISBANK", "AXIS BANK", "LT", "L&T", "TITAN", "ADANI",
	"ONGC", "NTPC", "BHARTI AIRTEL", "BHARTIARTL", "SBIN", "SBI",
	"ZOMATO", "PAYTM", "HAL", "HDFC", "KOTAK", "NIFTY", "SENSEX",
}

var nameAliases = map[string]string{
	"INFOSYS":       "INFY",
	"TATA MOTORS":   "TATAMOTORS",
	"AXIS BANK":     "AXISBANK",
	"L&T":           "LT",
	"BHARTI AIRTEL": "BHARTIARTL",
	"SBI":           "SBIN",
	"HDFC":          "HDFCBANK",
	"KOTAK":         "KOTAKBANK",
}

// DetectAffectedStocks extracts up to five tradable symbols mentioned in
// the text. Index names and group mentions are not tradable and are
// dropped after alias mapping.
func DetectAffectedStocks(title, summary string) []string {
	text := strings.ToUpper(title + " " + summary)
	var affected []string
	for _, name := range knownNames {
		if !strings.Contains(text, name) {
			continue
		}
		mapped := name
		if alias, ok := nameAliases[name]; ok {
			mapped = alias
		}
		if mapped == "NIFTY" || mapped == "SENSEX" || mapped == "ADANI" {
			continue
		}
		dup := false
		for _, a := range affected {
			if a == mapped {
				dup = true
				break
			}
		}
		if !dup {
			affected = append(affected, mapped)
		}
		if len(affected) == 5 {
			break
		}
	}
	return affected
}
