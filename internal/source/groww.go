package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"MarketTerminal/internal/market"
	"MarketTerminal/internal/model"
)

// Groww is the primary brokerage source. It exchanges API key + secret for
// an access token and fetches per-symbol quotes. On an auth failure it
// reconnects once and retries the symbol.
type Groww struct {
	APIKey    string
	APISecret string
	Client    *http.Client
	BaseURL   string

	mu    sync.Mutex
	token string
}

// NewGroww creates the Groww source. Credentials may be empty, in which
// case the source reports unconfigured and the aggregator skips it.
func NewGroww(apiKey, apiSecret, proxyURL string) *Groww {
	return &Groww{
		APIKey:    apiKey,
		APISecret: apiSecret,
		Client:    newClient(proxyURL, 15*time.Second),
		BaseURL:   "https://api.groww.in",
	}
}

func (g *Groww) Name() string { return "groww" }

func (g *Groww) IsConfigured() bool {
	return g.APIKey != "" && g.APIKey != "your_groww_api_key_here"
}

func (g *Groww) Ready() bool { return g.IsConfigured() }

// Connected reports whether a token exchange has succeeded.
func (g *Groww) Connected() bool { return g.accessToken() != "" }

// Connect exchanges the key pair for an access token.
func (g *Groww) Connect(ctx context.Context) error {
	if !g.IsConfigured() {
		return fmt.Errorf("groww: credentials not configured")
	}

	payload, _ := json.Marshal(map[string]string{
		"api_key": g.APIKey,
		"secret":  g.APISecret,
	})
	req, err := http.NewRequestWithContext(ctx, "POST", g.BaseURL+"/v1/token/api/access", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return fmt.Errorf("groww connect: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("groww connect read: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("groww connect: status %d", resp.StatusCode)
	}

	var tok struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &tok); err != nil {
		return fmt.Errorf("groww connect decode: %w", err)
	}
	if tok.Token == "" {
		return fmt.Errorf("groww connect: empty token")
	}

	g.mu.Lock()
	g.token = tok.Token
	g.mu.Unlock()
	log.Println("[INFO] groww connected")
	return nil
}

func (g *Groww) accessToken() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.token
}

func (g *Groww) dropToken() {
	g.mu.Lock()
	g.token = ""
	g.mu.Unlock()
}

// growwQuote is the live-data quote payload.
type growwQuote struct {
	LastPrice float64 `json:"last_price"`
	DayChange float64 `json:"day_change"`
	OHLC      struct {
		Close float64 `json:"close"`
	} `json:"ohlc"`
}

var errGrowwAuth = fmt.Errorf("groww: unauthorized")

func (g *Groww) fetchQuote(ctx context.Context, exchange, tradingSymbol string) (growwQuote, error) {
	if g.accessToken() == "" {
		if err := g.Connect(ctx); err != nil {
			return growwQuote{}, err
		}
	}

	u := fmt.Sprintf("%s/v1/live-data/quote?exchange=%s&segment=CASH&trading_symbol=%s",
		g.BaseURL, exchange, url.QueryEscape(tradingSymbol))
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return growwQuote{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.accessToken())

	resp, err := g.Client.Do(req)
	if err != nil {
		return growwQuote{}, fmt.Errorf("groww quote %s: %w", tradingSymbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return growwQuote{}, fmt.Errorf("groww quote read: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return growwQuote{}, errGrowwAuth
	}
	if resp.StatusCode != http.StatusOK {
		return growwQuote{}, fmt.Errorf("groww quote %s: status %d", tradingSymbol, resp.StatusCode)
	}

	var envelope struct {
		Payload growwQuote `json:"payload"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return growwQuote{}, fmt.Errorf("groww quote decode: %w", err)
	}
	return envelope.Payload, nil
}

func (g *Groww) toQuote(symbol, shortName string, q growwQuote) model.Quote {
	ltp := q.LastPrice
	prev := q.OHLC.Close
	if prev == 0 {
		prev = ltp
	}
	netChg := q.DayChange
	if netChg == 0 {
		netChg = ltp - prev
	}
	var chgPct float64
	if prev != 0 {
		chgPct = netChg / prev * 100
	}
	return model.Quote{
		Symbol:        symbol,
		ShortName:     shortName,
		Price:         model.Round2(ltp),
		PreviousClose: model.Round2(prev),
		Change:        model.Round2(netChg),
		ChangePercent: model.Round2(chgPct),
	}
}

func (g *Groww) fetchMapped(ctx context.Context, symbols map[string]string, exchange string) map[string]model.Quote {
	results := make(map[string]model.Quote)
	for yahooSym, growwSym := range symbols {
		q, err := g.fetchQuote(ctx, exchange, growwSym)
		if err == errGrowwAuth {
			// Token expired mid-batch: reconnect once and retry the symbol.
			log.Println("[WARN] groww token issue, reconnecting")
			g.dropToken()
			if cerr := g.Connect(ctx); cerr != nil {
				log.Printf("[WARN] groww reconnect failed: %v", cerr)
				continue
			}
			q, err = g.fetchQuote(ctx, exchange, growwSym)
		}
		if err != nil {
			log.Printf("[WARN] groww quote %s: %v", growwSym, err)
			continue
		}
		if q.LastPrice == 0 {
			continue
		}
		results[yahooSym] = g.toQuote(yahooSym, growwSym, q)
	}
	return results
}

// FetchAll fetches every mapped index and stock. SENSEX is the one BSE
// instrument; everything else trades on NSE.
func (g *Groww) FetchAll(ctx context.Context) (indices, stocks map[string]model.Quote, err error) {
	if !g.IsConfigured() {
		return nil, nil, fmt.Errorf("groww: not configured")
	}

	stocks = g.fetchMapped(ctx, market.GrowwStockMap, "NSE")

	nseIdx := make(map[string]string)
	bseIdx := make(map[string]string)
	for sym, name := range market.GrowwIndexMap {
		if sym == "^BSESN" {
			bseIdx[sym] = name
		} else {
			nseIdx[sym] = name
		}
	}
	indices = g.fetchMapped(ctx, nseIdx, "NSE")
	for sym, q := range g.fetchMapped(ctx, bseIdx, "BSE") {
		indices[sym] = q
	}
	return indices, stocks, nil
}

// FetchHoldings pulls the account's holdings for the portfolio sync.
func (g *Groww) FetchHoldings(ctx context.Context) ([]model.Holding, error) {
	if g.accessToken() == "" {
		if err := g.Connect(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, "GET", g.BaseURL+"/v1/holdings/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.accessToken())

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("groww holdings: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("groww holdings read: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("groww holdings: status %d", resp.StatusCode)
	}

	var envelope struct {
		Payload struct {
			Holdings []struct {
				TradingSymbol     string   `json:"trading_symbol"`
				ISIN              string   `json:"isin"`
				Quantity          float64  `json:"quantity"`
				AveragePrice      float64  `json:"average_price"`
				TradableExchanges []string `json:"tradable_exchanges"`
			} `json:"holdings"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("groww holdings decode: %w", err)
	}

	holdings := make([]model.Holding, 0, len(envelope.Payload.Holdings))
	for _, h := range envelope.Payload.Holdings {
		holdings = append(holdings, model.Holding{
			Symbol:    h.TradingSymbol,
			ISIN:      h.ISIN,
			Quantity:  h.Quantity,
			AvgPrice:  h.AveragePrice,
			Invested:  model.Round2(h.Quantity * h.AveragePrice),
			Exchanges: h.TradableExchanges,
		})
	}
	return holdings, nil
}
