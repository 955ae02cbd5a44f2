package model

import "math"

// Quote is the canonical per-symbol quote shape shared by all data sources.
// Field names mirror the wire format the frontend already consumes.
type Quote struct {
	Symbol           string  `json:"symbol"`
	ShortName        string  `json:"shortName"`
	Price            float64 `json:"regularMarketPrice"`
	PreviousClose    float64 `json:"regularMarketPreviousClose"`
	Change           float64 `json:"regularMarketChange"`
	ChangePercent    float64 `json:"regularMarketChangePercent"`
	FiftyTwoWeekHigh float64 `json:"fiftyTwoWeekHigh,omitempty"`
	FiftyTwoWeekLow  float64 `json:"fiftyTwoWeekLow,omitempty"`
	MarketCap        float64 `json:"marketCap,omitempty"`
}

// IndexSnapshot holds one index's values, keyed by logical name ("nifty").
type IndexSnapshot struct {
	Value         float64 `json:"val"`
	PreviousClose float64 `json:"prev"`
	Change        float64 `json:"chg"`
	ChangePercent float64 `json:"chgP"`
}

// CommoditySnapshot holds one commodity or currency pair.
type CommoditySnapshot struct {
	Name          string  `json:"name"`
	Value         float64 `json:"val"`
	Change        float64 `json:"chg"`
	ChangePercent float64 `json:"chgP"`
}

// Round2 rounds to two decimal places, the precision used everywhere
// change and percent figures are derived.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// NewQuote builds a Quote with change fields derived from price and
// previous close. ChangePercent is zero when previousClose is zero.
func NewQuote(symbol, shortName string, price, previousClose float64) Quote {
	q := Quote{
		Symbol:        symbol,
		ShortName:     shortName,
		Price:         Round2(price),
		PreviousClose: Round2(previousClose),
	}
	q.Change = Round2(q.Price - q.PreviousClose)
	if q.PreviousClose > 0 {
		q.ChangePercent = Round2(q.Change / q.PreviousClose * 100)
	}
	return q
}
