package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"MarketTerminal/internal/cache"

	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Markets</title>
<item>
<title>Sensex surges 500 points on strong bank earnings</title>
<description>&lt;p&gt;Banking stocks led the rally after quarterly results.&lt;/p&gt;</description>
<link>https://example.com/a1</link>
<pubDate>Mon, 31 Aug 2026 10:30:00 +0530</pubDate>
</item>
<item>
<title>Infosys falls after weak guidance</title>
<description>IT major cuts revenue outlook.</description>
<link>https://example.com/a2</link>
<pubDate>Mon, 31 Aug 2026 10:00:00 +0530</pubDate>
</item>
</channel>
</rss>`

func TestFetchParsesAndClassifies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	st := cache.New()
	f := NewFetcher(st)
	f.Feeds = []Feed{{URL: srv.URL, Source: "Test Feed", Category: "Economy"}}

	f.Fetch(context.Background())

	snap := st.Snapshot()
	require.Len(t, snap.News, 2)
	require.False(t, snap.LastNewsUpdate.IsZero())

	first := snap.News[0]
	require.Equal(t, 1, first.ID)
	require.Equal(t, "Sensex surges 500 points on strong bank earnings", first.Title)
	require.Equal(t, "Banking stocks led the rally after quarterly results.", first.Summary)
	require.Equal(t, "positive", first.Impact)
	require.Equal(t, "Earnings", first.Category)
	require.Equal(t, "Test Feed", first.Source)
	require.Equal(t, "https://example.com/a1", first.Link)
	require.Equal(t, "10:30 AM", first.Time)

	second := snap.News[1]
	require.Equal(t, 2, second.ID)
	require.Equal(t, "negative", second.Impact)
	require.Contains(t, second.Affected, "INFY")
}

func TestFetchFeedFailureLeavesListShort(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleRSS))
	}))
	defer good.Close()

	st := cache.New()
	f := NewFetcher(st)
	f.Feeds = []Feed{
		{URL: bad.URL, Source: "Broken", Category: "Economy"},
		{URL: good.URL, Source: "Working", Category: "Economy"},
	}

	f.Fetch(context.Background())
	require.Len(t, st.Snapshot().News, 2)
}
