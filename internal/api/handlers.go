package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"MarketTerminal/internal/closes"
	"MarketTerminal/internal/market"
	"MarketTerminal/internal/model"

	"github.com/gin-gonic/gin"
)

func isoTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.Format(time.RFC3339)
}

// handleQuote serves quotes in the Yahoo-compatible envelope the frontend
// consumes. Index symbols resolve through the index view, and unknown
// symbols get one suffix-insensitive retry against the quote map.
func (s *Server) handleQuote(c *gin.Context) {
	var symbols []string
	for _, sym := range strings.Split(c.Query("symbols"), ",") {
		if sym = strings.TrimSpace(sym); sym != "" {
			symbols = append(symbols, sym)
		}
	}

	snap := s.Store.Snapshot()
	result := make([]model.Quote, 0, len(symbols))

	for _, sym := range symbols {
		if name, ok := market.IndexNameFor(sym); ok {
			if idx, ok := snap.Indices[name]; ok {
				result = append(result, model.Quote{
					Symbol:        sym,
					ShortName:     strings.ToUpper(name),
					Price:         idx.Value,
					PreviousClose: idx.PreviousClose,
					Change:        idx.Change,
					ChangePercent: idx.ChangePercent,
				})
				continue
			}
		}
		if q, ok := snap.Quotes[sym]; ok {
			result = append(result, q)
			continue
		}
		if cmd, ok := snap.Commodities[sym]; ok {
			result = append(result, model.Quote{
				Symbol:        sym,
				ShortName:     cmd.Name,
				Price:         cmd.Value,
				Change:        cmd.Change,
				ChangePercent: cmd.ChangePercent,
			})
			continue
		}
		bare := strings.TrimSuffix(sym, ".NS")
		for k, q := range snap.Quotes {
			if strings.TrimSuffix(k, ".NS") == bare {
				result = append(result, q)
				break
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"quoteResponse": gin.H{"result": result, "error": nil},
	})
}

func (s *Server) handleIndices(c *gin.Context) {
	c.JSON(http.StatusOK, s.Store.Snapshot().Indices)
}

func (s *Server) handleCommodities(c *gin.Context) {
	snap := s.Store.Snapshot()
	list := make([]gin.H, 0, len(snap.Commodities))
	for sym, data := range snap.Commodities {
		list = append(list, gin.H{
			"symbol":        sym,
			"name":          data.Name,
			"price":         data.Value,
			"change":        data.Change,
			"changePercent": data.ChangePercent,
		})
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleNews(c *gin.Context) {
	cat := c.DefaultQuery("category", "all")
	snap := s.Store.Snapshot()

	articles := snap.News
	if cat != "" && cat != "all" {
		filtered := make([]model.NewsArticle, 0, len(articles))
		for _, a := range articles {
			if strings.EqualFold(a.Category, cat) {
				filtered = append(filtered, a)
			}
		}
		articles = filtered
	}
	if articles == nil {
		articles = []model.NewsArticle{}
	}

	c.JSON(http.StatusOK, gin.H{
		"articles":   articles,
		"total":      len(articles),
		"lastUpdate": isoTime(snap.LastNewsUpdate),
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	snap := s.Store.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"status":             "running",
		"stocks_cached":      len(snap.Quotes),
		"indices_cached":     len(snap.Indices),
		"commodities_cached": len(snap.Commodities),
		"news_cached":        len(snap.News),
		"last_stock_update":  isoTime(snap.LastStockUpdate),
		"last_news_update":   isoTime(snap.LastNewsUpdate),
	})
}

// handleSaveCloses is the manual trigger for the market-close save, for
// days the automatic 15:31 save was missed.
func (s *Server) handleSaveCloses(c *gin.Context) {
	saved, err := closes.SaveMarketClose(s.Closes, s.Store)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "saved",
		"symbols": saved,
		"file":    s.Closes.Path,
	})
}

func (s *Server) handleDataSources(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"groww": gin.H{
			"configured": s.Groww.IsConfigured(),
			"connected":  s.Groww.Connected(),
			"priority":   0,
		},
		"upstox": gin.H{
			"configured": s.Upstox.IsConfigured(),
			"has_token":  s.Upstox.HasToken(),
			"priority":   1,
		},
		"google_finance": gin.H{"configured": true, "connected": true, "priority": 2},
		"yahoo":          gin.H{"configured": true, "connected": true, "priority": 3},
	})
}

func (s *Server) handlePortfolio(c *gin.Context) {
	p := s.Portfolio.WithLivePrices(s.Store)
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no portfolio synced, POST /api/portfolio/sync first"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handlePortfolioSync(c *gin.Context) {
	if !s.Groww.IsConfigured() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "groww API not configured"})
		return
	}
	p, err := s.Portfolio.SyncFromGroww(c.Request.Context(), s.Groww)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "synced", "holdings": len(p.Holdings)})
}

func (s *Server) handleUpstoxLogin(c *gin.Context) {
	if !s.Upstox.IsConfigured() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Upstox API not configured",
			"message": "Add UPSTOX_API_KEY and UPSTOX_API_SECRET to the .env file",
		})
		return
	}
	c.Redirect(http.StatusFound, s.Upstox.LoginURL())
}

func (s *Server) handleUpstoxStatus(c *gin.Context) {
	var loginURL interface{}
	if s.Upstox.IsConfigured() {
		loginURL = "/upstox/login"
	}
	c.JSON(http.StatusOK, gin.H{
		"configured": s.Upstox.IsConfigured(),
		"has_token":  s.Upstox.HasToken(),
		"login_url":  loginURL,
	})
}

func (s *Server) handleUpstoxCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no authorization code received"})
		return
	}

	token, err := s.Upstox.ExchangeCode(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	s.persistToken(token)

	// Kick a refresh so brokerage data shows up immediately. Detached
	// from the request context, which dies with this handler.
	go s.Aggregator.Refresh(context.Background())

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(
		`<html><body><h1>Upstox login successful</h1><p>Real-time data is now active. You can close this tab.</p></body></html>`))
}

func (s *Server) handleGrowwStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"configured": s.Groww.IsConfigured(),
		"connected":  s.Groww.Connected(),
	})
}
