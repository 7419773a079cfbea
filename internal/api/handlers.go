package api

import (
	"errors"
	"net/http"

	"crypto-portfolio-go/internal/auth"
	"crypto-portfolio-go/internal/trader"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type registerRequest struct {
	Username string          `json:"username"`
	Password string          `json:"password"`
	Balance  decimal.Decimal `json:"balance"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type fundsRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type tradeRequest struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Price  decimal.Decimal `json:"price"`
}

func (r tradeRequest) order() trader.Order {
	return trader.Order{Symbol: r.Symbol, Name: r.Name, Amount: r.Amount, Price: r.Price}
}

type watchRequest struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

func (s *Server) marketsHandler(c *gin.Context) {
	markets, err := s.markets.GetMarkets(c.Request.Context())
	if err != nil {
		s.serverError(c, "Failed to fetch cryptos", err)
		return
	}
	c.JSON(http.StatusOK, markets)
}

func (s *Server) registerHandler(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	_, err := s.auth.Register(c.Request.Context(), req.Username, req.Password, req.Balance)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Registered!"})
	case errors.Is(err, auth.ErrDuplicateUser):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Username taken"})
	case errors.Is(err, auth.ErrInvalidInput), errors.Is(err, auth.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
	default:
		s.logger.Error("Registration failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
	}
}

func (s *Server) loginHandler(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	sessionID, _, err := s.auth.Login(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
		return
	}
	if err != nil {
		s.logger.Error("Login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	// Replace any session the browser already holds.
	if previous, _ := c.Cookie(s.session.CookieName); previous != "" && previous != sessionID {
		if err := s.auth.Logout(c.Request.Context(), previous); err != nil {
			s.logger.Warn("Failed to destroy previous session", zap.Error(err))
		}
	}

	s.setSessionCookie(c, sessionID, int(s.session.TTL.Seconds()))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) logoutHandler(c *gin.Context) {
	sessionID, _ := c.Cookie(s.session.CookieName)
	if err := s.auth.Logout(c.Request.Context(), sessionID); err != nil {
		s.logger.Warn("Failed to destroy session", zap.Uint("user_id", currentUser(c)), zap.Error(err))
	}
	s.setSessionCookie(c, "", -1)
	c.Redirect(http.StatusFound, "/")
}

func (s *Server) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.session.CookieName, value, maxAge, "/", "", s.session.Secure, true)
}

func (s *Server) portfolioHandler(c *gin.Context) {
	holdings, err := s.engine.Portfolio(c.Request.Context(), currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, holdings)
}

func (s *Server) balanceHandler(c *gin.Context) {
	balance, err := s.engine.Balance(c.Request.Context(), currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

func (s *Server) addFundsHandler(c *gin.Context) {
	var req fundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	if _, err := s.engine.AddFunds(c.Request.Context(), currentUser(c), req.Amount); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) buyHandler(c *gin.Context) {
	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	if _, err := s.engine.Buy(c.Request.Context(), currentUser(c), req.order()); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) sellHandler(c *gin.Context) {
	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	if _, err := s.engine.Sell(c.Request.Context(), currentUser(c), req.order()); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) listWatchlistHandler(c *gin.Context) {
	entries, err := s.watchlist.List(c.Request.Context(), currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) addWatchlistHandler(c *gin.Context) {
	var req watchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	if err := s.watchlist.Add(c.Request.Context(), currentUser(c), req.Symbol, req.Name); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) removeWatchlistHandler(c *gin.Context) {
	if err := s.watchlist.Remove(c.Request.Context(), currentUser(c), c.Param("symbol")); err != nil {
		s.serverError(c, "Failed to delete from watchlist", err)
		return
	}
	c.String(http.StatusOK, "OK")
}

func (s *Server) profileHandler(c *gin.Context) {
	user, err := s.engine.Profile(c.Request.Context(), currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": user.Username, "balance": user.Balance})
}

func (s *Server) transactionsHandler(c *gin.Context) {
	txs, err := s.engine.Transactions(c.Request.Context(), currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, txs)
}
