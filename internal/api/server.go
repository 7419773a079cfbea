package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"crypto-portfolio-go/internal/auth"
	"crypto-portfolio-go/internal/coingecko"
	"crypto-portfolio-go/internal/config"
	"crypto-portfolio-go/internal/trader"
	"crypto-portfolio-go/internal/watchlist"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server provides the HTTP interface for the portfolio service.
type Server struct {
	Router *gin.Engine

	server    *http.Server
	logger    *zap.Logger
	session   config.Session
	auth      *auth.Service
	engine    *trader.Engine
	watchlist *watchlist.Service
	markets   coingecko.MarketClient
}

// NewServer wires the router, middleware and handlers.
func NewServer(
	logger *zap.Logger,
	cfg *config.Config,
	authService *auth.Service,
	engine *trader.Engine,
	watchlists *watchlist.Service,
	markets coingecko.MarketClient,
) *Server {
	s := &Server{
		Router:    gin.New(),
		logger:    logger.Named("api-server"),
		session:   cfg.Session,
		auth:      authService,
		engine:    engine,
		watchlist: watchlists,
		markets:   markets,
	}
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	s.Router.Use(requestLogger(s.logger), gin.Recovery(), cors(cfg.Server.CORSOrigin))
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.Router

	r.GET("/health", s.healthHandler)
	r.GET("/api/cryptos", s.marketsHandler)
	r.POST("/register", s.registerHandler)
	r.POST("/login", s.loginHandler)

	// Protected routes
	protected := r.Group("/")
	protected.Use(s.requireLogin())
	{
		protected.GET("/logout", s.logoutHandler)
		protected.GET("/portfolio", s.portfolioHandler)
		protected.GET("/balance", s.balanceHandler)
		protected.POST("/add-funds", s.addFundsHandler)
		protected.POST("/buy", s.buyHandler)
		protected.POST("/sell", s.sellHandler)
		protected.GET("/watchlist", s.listWatchlistHandler)
		protected.POST("/watchlist", s.addWatchlistHandler)
		protected.DELETE("/watchlist/:symbol", s.removeWatchlistHandler)
		protected.GET("/profile", s.profileHandler)
		protected.GET("/transactions", s.transactionsHandler)
	}
}

// Start runs the HTTP server in a new goroutine.
func (s *Server) Start() {
	s.logger.Info("Starting API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server failed", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server...")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
