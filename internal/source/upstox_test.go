package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

const upstoxQuotesResponse = `{
  "status": "success",
  "data": {
    "NSE_INDEX:Nifty 50": {
      "last_price": 24712.80,
      "net_change": 101.70,
      "ohlc": {"close": 24611.10}
    },
    "NSE_INDEX:Nifty Bank": {
      "last_price": 51250.00,
      "net_change": -150.00,
      "ohlc": {"close": 51400.00}
    },
    "NSE_EQ:INE467B01029": {
      "symbol": "TCS",
      "last_price": 4100.50,
      "net_change": 50.25,
      "ohlc": {"close": 4050.25}
    }
  }
}`

func newTestUpstox(url string) *Upstox {
	u := NewUpstox("key", "secret", "http://localhost:5000/callback", "tok", "")
	u.BaseURL = url
	return u
}

func TestUpstoxFetchAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Write([]byte(upstoxQuotesResponse))
	}))
	defer srv.Close()

	u := newTestUpstox(srv.URL)
	indices, stocks, err := u.FetchAll(context.Background())
	require.NoError(t, err)

	nifty, ok := indices["^NSEI"]
	require.True(t, ok, "nifty should map back from instrument key")
	require.Equal(t, 24712.80, nifty.Price)
	require.Equal(t, 24611.10, nifty.PreviousClose)
	require.Equal(t, 101.70, nifty.Change)
	require.Equal(t, "NIFTY", nifty.ShortName)

	bank := indices["^NSEBANK"]
	require.Equal(t, -150.00, bank.Change)

	tcs, ok := stocks["TCS.NS"]
	require.True(t, ok)
	require.Equal(t, 4100.50, tcs.Price)
	require.Equal(t, "TCS", tcs.ShortName)

	// VIX and unreturned stocks are simply absent.
	_, ok = indices["^INDIAVIX"]
	require.False(t, ok)
}

func TestUpstox401DropsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	u := newTestUpstox(srv.URL)
	require.True(t, u.HasToken())

	_, _, err := u.FetchAll(context.Background())
	require.Error(t, err)
	require.False(t, u.HasToken(), "401 must invalidate the token")
	require.False(t, u.Ready())
}

func TestUpstoxNotReadyWithoutToken(t *testing.T) {
	u := NewUpstox("key", "secret", "http://localhost:5000/callback", "", "")
	require.True(t, u.IsConfigured())
	require.False(t, u.Ready())

	_, _, err := u.FetchAll(context.Background())
	require.Error(t, err)
}

func TestUpstoxExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "authorization_code", r.Form.Get("grant_type"))
		require.Equal(t, "abc123", r.Form.Get("code"))
		w.Write([]byte(`{"access_token": "fresh-token"}`))
	}))
	defer srv.Close()

	u := NewUpstox("key", "secret", "http://localhost:5000/callback", "", "")
	u.BaseURL = srv.URL

	tok, err := u.ExchangeCode(context.Background(), "abc123")
	require.NoError(t, err)
	require.Equal(t, "fresh-token", tok)
	require.True(t, u.Ready())
}

func TestUpstoxLoginURL(t *testing.T) {
	u := NewUpstox("my-key", "secret", "http://localhost:5000/callback", "", "")
	url := u.LoginURL()
	require.Contains(t, url, "client_id=my-key")
	require.Contains(t, url, "response_type=code")
	require.Contains(t, url, "redirect_uri=http%3A%2F%2Flocalhost%3A5000%2Fcallback")
}
