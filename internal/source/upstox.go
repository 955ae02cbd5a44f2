package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"MarketTerminal/internal/market"
	"MarketTerminal/internal/model"
)

// Upstox is the secondary brokerage source. Unlike Groww its token comes
// from an interactive OAuth login, so it only participates once the
// /callback exchange has run. A 401 drops the token until the next login.
type Upstox struct {
	APIKey      string
	APISecret   string
	RedirectURI string
	Client      *http.Client
	BaseURL     string

	mu    sync.Mutex
	token string
}

// NewUpstox creates the Upstox source. token may be empty.
func NewUpstox(apiKey, apiSecret, redirectURI, token, proxyURL string) *Upstox {
	return &Upstox{
		APIKey:      apiKey,
		APISecret:   apiSecret,
		RedirectURI: redirectURI,
		Client:      newClient(proxyURL, 10*time.Second),
		BaseURL:     "https://api.upstox.com/v2",
		token:       token,
	}
}

func (u *Upstox) Name() string { return "upstox" }

func (u *Upstox) IsConfigured() bool {
	return u.APIKey != "" && u.APIKey != "your_api_key_here"
}

// HasToken reports whether an access token is currently held.
func (u *Upstox) HasToken() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.token != ""
}

func (u *Upstox) Ready() bool { return u.IsConfigured() && u.HasToken() }

// SetToken installs a token obtained via the OAuth callback.
func (u *Upstox) SetToken(token string) {
	u.mu.Lock()
	u.token = token
	u.mu.Unlock()
}

func (u *Upstox) accessToken() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.token
}

// LoginURL returns the authorization dialog the user must visit.
func (u *Upstox) LoginURL() string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", u.APIKey)
	q.Set("redirect_uri", u.RedirectURI)
	return u.BaseURL + "/login/authorization/dialog?" + q.Encode()
}

// ExchangeCode trades the OAuth code for an access token and installs it.
func (u *Upstox) ExchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", u.APIKey)
	form.Set("client_secret", u.APISecret)
	form.Set("redirect_uri", u.RedirectURI)
	form.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, "POST", u.BaseURL+"/login/authorization/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := u.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upstox token exchange: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("upstox token read: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upstox token exchange: status %d, body: %s", resp.StatusCode, string(body))
	}

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", fmt.Errorf("upstox token decode: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("upstox token exchange: empty access_token")
	}

	u.SetToken(tok.AccessToken)
	return tok.AccessToken, nil
}

// upstoxQuote is one instrument in the bulk quotes response.
type upstoxQuote struct {
	Symbol    string  `json:"symbol"`
	LastPrice float64 `json:"last_price"`
	NetChange float64 `json:"net_change"`
	OHLC      struct {
		Close float64 `json:"close"`
	} `json:"ohlc"`
}

func (u *Upstox) fetchQuotes(ctx context.Context, keys []string) (map[string]upstoxQuote, error) {
	if !u.HasToken() {
		return nil, fmt.Errorf("upstox: no access token")
	}

	endpoint := u.BaseURL + "/market-quote/quotes?instrument_key=" + url.QueryEscape(strings.Join(keys, ","))
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+u.accessToken())

	resp, err := u.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstox quotes: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("upstox quotes read: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		// Token expired: drop it so the next cycle skips this source
		// until the user logs in again.
		log.Println("[WARN] upstox token expired, login required")
		u.SetToken("")
		return nil, fmt.Errorf("upstox: token expired")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstox quotes: status %d", resp.StatusCode)
	}

	var envelope struct {
		Status string                 `json:"status"`
		Data   map[string]upstoxQuote `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("upstox quotes decode: %w", err)
	}
	if envelope.Status != "success" {
		return nil, fmt.Errorf("upstox quotes: status %q", envelope.Status)
	}
	return envelope.Data, nil
}

func (u *Upstox) toQuote(symbol, shortName string, q upstoxQuote) model.Quote {
	ltp := q.LastPrice
	prev := q.OHLC.Close
	if prev == 0 {
		prev = ltp
	}
	netChg := q.NetChange
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

// FetchAll fetches every mapped index and stock in two bulk calls.
// Response keys use ':' where instrument keys use '|'.
func (u *Upstox) FetchAll(ctx context.Context) (indices, stocks map[string]model.Quote, err error) {
	if !u.Ready() {
		return nil, nil, fmt.Errorf("upstox: not ready")
	}

	indices = make(map[string]model.Quote)
	idxKeys := make([]string, 0, len(market.UpstoxIndexKeys))
	for _, key := range market.UpstoxIndexKeys {
		idxKeys = append(idxKeys, key)
	}
	if data, ferr := u.fetchQuotes(ctx, idxKeys); ferr != nil {
		log.Printf("[WARN] upstox indices: %v", ferr)
	} else {
		for name, key := range market.UpstoxIndexKeys {
			q, ok := data[strings.ReplaceAll(key, "|", ":")]
			if !ok || q.LastPrice == 0 {
				continue
			}
			yahooSym := market.IndexSymbols[name]
			indices[yahooSym] = u.toQuote(yahooSym, strings.ToUpper(name), q)
		}
	}

	stocks = make(map[string]model.Quote)
	stockKeys := make([]string, 0, len(market.UpstoxStockMap))
	for _, key := range market.UpstoxStockMap {
		stockKeys = append(stockKeys, key)
	}
	if data, ferr := u.fetchQuotes(ctx, stockKeys); ferr != nil {
		log.Printf("[WARN] upstox stocks: %v", ferr)
	} else {
		for yahooSym, key := range market.UpstoxStockMap {
			q, ok := data[strings.ReplaceAll(key, "|", ":")]
			if !ok || q.LastPrice == 0 {
				continue
			}
			shortName := q.Symbol
			if shortName == "" {
				shortName = strings.TrimSuffix(yahooSym, ".NS")
			}
			stocks[yahooSym] = u.toQuote(yahooSym, shortName, q)
		}
	}

	if len(indices) == 0 && len(stocks) == 0 {
		return nil, nil, fmt.Errorf("upstox: no quotes returned")
	}
	return indices, stocks, nil
}
