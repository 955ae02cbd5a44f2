package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"MarketTerminal/internal/market"
	"MarketTerminal/internal/model"
)

// Yahoo is the free baseline source. It needs no credentials and covers
// equities, indices, and commodities alike via the public chart API.
type Yahoo struct {
	Client  *http.Client
	BaseURL string
}

// NewYahoo creates the baseline Yahoo Finance source.
func NewYahoo(proxyURL string) *Yahoo {
	return &Yahoo{
		Client:  newClient(proxyURL, 30*time.Second),
		BaseURL: "https://query1.finance.yahoo.com",
	}
}

func (y *Yahoo) Name() string { return "yahoo" }

// yahooChart is the v8 chart API response structure.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				ShortName          string  `json:"shortName"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
				PreviousClose      float64 `json:"previousClose"`
				FiftyTwoWeekHigh   float64 `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow    float64 `json:"fiftyTwoWeekLow"`
			} `json:"meta"`
			Indicators struct {
				Quote []struct {
					Close []interface{} `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

// FetchQuote fetches one symbol's current price and previous close from
// the daily chart. Previous close falls back to the penultimate bar when
// the meta block does not carry it.
func (y *Yahoo) FetchQuote(ctx context.Context, symbol string) (model.Quote, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=5d",
		y.BaseURL, url.PathEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return model.Quote{}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := y.Client.Do(req)
	if err != nil {
		return model.Quote{}, fmt.Errorf("yahoo fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Quote{}, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return model.Quote{}, fmt.Errorf("yahoo %s: status %d", symbol, resp.StatusCode)
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return model.Quote{}, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return model.Quote{}, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return model.Quote{}, fmt.Errorf("yahoo %s: no data returned", symbol)
	}

	result := chart.Chart.Result[0]

	var closes []float64
	if len(result.Indicators.Quote) > 0 {
		for _, c := range result.Indicators.Quote[0].Close {
			if v := toFloat(c); v > 0 {
				closes = append(closes, v)
			}
		}
	}

	price := result.Meta.RegularMarketPrice
	if price == 0 && len(closes) > 0 {
		price = closes[len(closes)-1]
	}
	prev := result.Meta.PreviousClose
	if prev == 0 {
		prev = result.Meta.ChartPreviousClose
	}
	if prev == 0 && len(closes) > 1 {
		prev = closes[len(closes)-2]
	}
	if price == 0 {
		return model.Quote{}, fmt.Errorf("yahoo %s: no price data", symbol)
	}

	shortName := result.Meta.ShortName
	if shortName == "" {
		shortName = market.ShortName(symbol)
	}

	q := model.NewQuote(symbol, shortName, price, prev)
	q.FiftyTwoWeekHigh = result.Meta.FiftyTwoWeekHigh
	q.FiftyTwoWeekLow = result.Meta.FiftyTwoWeekLow
	return q, nil
}
