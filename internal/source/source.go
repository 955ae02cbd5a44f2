// Package source contains the quote provider adapters. Each adapter maps
// provider-native identifiers to the canonical Yahoo-style symbols the rest
// of the system keys on.
package source

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"MarketTerminal/internal/model"
)

// Baseline provides broad per-symbol coverage of the full universe.
type Baseline interface {
	Name() string
	FetchQuote(ctx context.Context, symbol string) (model.Quote, error)
}

// Overlay is a priority source covering a subset of symbols. Its fields
// overwrite the baseline's for the symbols it returns.
type Overlay interface {
	Name() string
	IsConfigured() bool
	// Ready reports whether the overlay can actually serve requests
	// right now (configured and, where required, holding a token).
	Ready() bool
	FetchAll(ctx context.Context) (indices, stocks map[string]model.Quote, err error)
}

// Verifier cross-checks individual symbols against an independent source.
type Verifier interface {
	Name() string
	FetchQuote(ctx context.Context, symbol string) (model.Quote, error)
}

const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// newClient builds an HTTP client with an optional proxy.
func newClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
