package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"MarketTerminal/internal/market"
	"MarketTerminal/internal/model"
)

// GoogleFinance scrapes the public quote page. It serves as an independent
// cross-check for indices and flagship stocks, not as a bulk source.
type GoogleFinance struct {
	Client  *http.Client
	BaseURL string
}

func NewGoogleFinance(proxyURL string) *GoogleFinance {
	return &GoogleFinance{
		Client:  newClient(proxyURL, 10*time.Second),
		BaseURL: "https://www.google.com/finance/quote/",
	}
}

func (g *GoogleFinance) Name() string { return "google-finance" }

var (
	lastPriceRe = regexp.MustCompile(`data-last-price="([\d.,]+)"`)
	prevCloseRe = regexp.MustCompile(`data-previous-close="([\d.,]+)"`)
)

func parseAttr(re *regexp.Regexp, html string) (float64, bool) {
	m := re.FindStringSubmatch(html)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// FetchQuote scrapes the quote page for a symbol's last price and previous
// close. Symbols without a Google Finance mapping return an error.
func (g *GoogleFinance) FetchQuote(ctx context.Context, symbol string) (model.Quote, error) {
	id, ok := market.GoogleFinanceID(symbol)
	if !ok {
		return model.Quote{}, fmt.Errorf("google finance: no mapping for %s", symbol)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", g.BaseURL+id, nil)
	if err != nil {
		return model.Quote{}, err
	}
	req.Header.Set("User-Agent", browserUA)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := g.Client.Do(req)
	if err != nil {
		return model.Quote{}, fmt.Errorf("google finance %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Quote{}, fmt.Errorf("google finance %s: status %d", id, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Quote{}, fmt.Errorf("google finance read: %w", err)
	}

	html := string(body)
	price, ok := parseAttr(lastPriceRe, html)
	if !ok {
		return model.Quote{}, fmt.Errorf("google finance %s: price not found", id)
	}
	prev, ok := parseAttr(prevCloseRe, html)
	if !ok {
		prev = price
	}

	return model.NewQuote(symbol, market.ShortName(symbol), price, prev), nil
}
