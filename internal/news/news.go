// Package news fetches market headlines from RSS feeds and classifies
// them by impact and category.
package news

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"MarketTerminal/internal/cache"
	"MarketTerminal/internal/model"
)

// Feed is one RSS source with its default category.
type Feed struct {
	URL      string
	Source   string
	Category string
}

// DefaultFeeds are the Indian financial press feeds polled every cycle.
var DefaultFeeds = []Feed{
	{"https://economictimes.indiatimes.com/markets/rssfeeds/1977021501.cms", "Economic Times", "Economy"},
	{"https://www.moneycontrol.com/rss/marketreports.xml", "Moneycontrol", "Economy"},
	{"https://www.livemint.com/rss/markets", "Livemint", "Economy"},
	{"https://economictimes.indiatimes.com/markets/stocks/rssfeeds/2146842.cms", "ET Stocks", "Sector"},
	{"https://www.moneycontrol.com/rss/results.xml", "MC Earnings", "Earnings"},
	{"https://economictimes.indiatimes.com/news/economy/rssfeeds/1373380680.cms", "ET Economy", "Policy"},
}

const (
	entriesPerFeed = 5
	maxArticles    = 30
	maxSummaryLen  = 300
)

// Fetcher pulls and classifies headlines into the cache.
type Fetcher struct {
	Client *http.Client
	Feeds  []Feed
	Store  *cache.Store
}

func NewFetcher(st *cache.Store) *Fetcher {
	return &Fetcher{
		Client: &http.Client{Timeout: 10 * time.Second},
		Feeds:  DefaultFeeds,
		Store:  st,
	}
}

type rssResponse struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	Link        string `xml:"link"`
	PubDate     string `xml:"pubDate"`
}

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

func stripHTML(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, ""))
}

func parsePubTime(pubDate string) string {
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC822Z} {
		if t, err := time.Parse(layout, pubDate); err == nil {
			return t.Format("03:04 PM")
		}
	}
	return time.Now().Format("03:04 PM")
}

// Fetch polls every feed, classifies and dedupes the headlines, and
// replaces the cached news list. Per-feed failures only shrink the list.
func (f *Fetcher) Fetch(ctx context.Context) {
	log.Println("[INFO] fetching news headlines")
	start := time.Now()

	var articles []model.NewsArticle
	for _, feed := range f.Feeds {
		items, err := f.fetchFeed(ctx, feed.URL)
		if err != nil {
			log.Printf("[WARN] rss %s: %v", feed.Source, err)
			continue
		}
		if len(items) > entriesPerFeed {
			items = items[:entriesPerFeed]
		}
		for _, item := range items {
			title := strings.TrimSpace(item.Title)
			if title == "" {
				continue
			}
			summary := stripHTML(item.Description)
			if len(summary) > maxSummaryLen {
				summary = summary[:maxSummaryLen]
			}
			articles = append(articles, model.NewsArticle{
				Title:    title,
				Summary:  summary,
				Category: ClassifyCategory(title, summary, feed.Category),
				Impact:   ClassifyImpact(title, summary),
				Time:     parsePubTime(item.PubDate),
				Source:   feed.Source,
				Affected: DetectAffectedStocks(title, summary),
				Link:     strings.TrimSpace(item.Link),
			})
		}
	}

	unique := dedupe(articles)
	if len(unique) > maxArticles {
		unique = unique[:maxArticles]
	}
	for i := range unique {
		unique[i].ID = i + 1
	}

	f.Store.SetNews(unique)
	log.Printf("[INFO] got %d unique news articles in %.1fs", len(unique), time.Since(start).Seconds())
}

func (f *Fetcher) fetchFeed(ctx context.Context, feedURL string) ([]rssItem, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var rss rssResponse
	if err := xml.Unmarshal(body, &rss); err != nil {
		return nil, err
	}
	return rss.Channel.Items, nil
}

// dedupe drops articles repeating another's title prefix. Feeds often
// syndicate the same story with minor suffix changes.
func dedupe(articles []model.NewsArticle) []model.NewsArticle {
	seen := make(map[string]bool)
	var unique []model.NewsArticle
	for _, a := range articles {
		key := strings.ToLower(a.Title)
		if len(key) > 60 {
			key = key[:60]
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, a)
	}
	return unique
}
