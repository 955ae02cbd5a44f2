// Package api exposes the cached market data over HTTP.
package api

import (
	"log"

	"MarketTerminal/internal/aggregator"
	"MarketTerminal/internal/cache"
	"MarketTerminal/internal/closes"
	"MarketTerminal/internal/portfolio"
	"MarketTerminal/internal/source"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// Server wires the HTTP handlers to the shared state.
type Server struct {
	Store      *cache.Store
	Aggregator *aggregator.Aggregator
	Closes     *closes.File
	Portfolio  *portfolio.Manager
	Groww      *source.Groww
	Upstox     *source.Upstox
	EnvFile    string
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), corsMiddleware())

	r.GET("/api/quote", s.handleQuote)
	r.GET("/api/indices", s.handleIndices)
	r.GET("/api/commodities", s.handleCommodities)
	r.GET("/api/news", s.handleNews)
	r.GET("/api/status", s.handleStatus)
	r.GET("/api/save-closes", s.handleSaveCloses)
	r.GET("/api/data-sources", s.handleDataSources)

	r.GET("/api/portfolio", s.handlePortfolio)
	r.POST("/api/portfolio/sync", s.handlePortfolioSync)

	r.GET("/upstox/login", s.handleUpstoxLogin)
	r.GET("/upstox/status", s.handleUpstoxStatus)
	r.GET("/callback", s.handleUpstoxCallback)
	r.GET("/groww/status", s.handleGrowwStatus)

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

// persistToken writes the Upstox token back to .env so it survives the
// daily restart.
func (s *Server) persistToken(token string) {
	env, err := godotenv.Read(s.EnvFile)
	if err != nil {
		env = map[string]string{}
	}
	env["UPSTOX_ACCESS_TOKEN"] = token
	if err := godotenv.Write(env, s.EnvFile); err != nil {
		log.Printf("[WARN] persist upstox token: %v", err)
	}
}
