package model

import "time"

// Holding is one position in the brokerage portfolio. LTP and the derived
// fields are filled in at read time from the live quote cache.
type Holding struct {
	Symbol       string   `json:"symbol"`
	ISIN         string   `json:"isin,omitempty"`
	Quantity     float64  `json:"quantity"`
	AvgPrice     float64  `json:"avgPrice"`
	Invested     float64  `json:"invested"`
	Exchanges    []string `json:"exchanges,omitempty"`
	LTP          float64  `json:"ltp"`
	CurrentValue float64  `json:"currentValue"`
	PnL          float64  `json:"pnl"`
	PnLPercent   float64  `json:"pnlPercent"`
}

// Portfolio is the locally cached holdings file enriched with totals.
type Portfolio struct {
	Source          string    `json:"source"`
	LastUpdated     time.Time `json:"lastUpdated"`
	TotalInvested   float64   `json:"totalInvested"`
	TotalCurrent    float64   `json:"totalCurrent,omitempty"`
	TotalPnL        float64   `json:"totalPnl,omitempty"`
	TotalPnLPercent float64   `json:"totalPnlPercent,omitempty"`
	Holdings        []Holding `json:"holdings"`
}
