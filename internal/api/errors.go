package api

import (
	"errors"
	"net/http"

	"crypto-portfolio-go/internal/auth"
	"crypto-portfolio-go/internal/trader"
	"crypto-portfolio-go/internal/watchlist"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps a service error to its HTTP status and body.
func (s *Server) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, trader.ErrInsufficientBalance):
		s.reject(c, http.StatusBadRequest, "Insufficient balance", err)
	case errors.Is(err, trader.ErrInsufficientHoldings):
		s.reject(c, http.StatusBadRequest, "Not enough holdings", err)
	case errors.Is(err, trader.ErrInvalidAmount),
		errors.Is(err, trader.ErrInvalidSymbol),
		errors.Is(err, watchlist.ErrInvalidSymbol):
		s.reject(c, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, trader.ErrUserNotFound), errors.Is(err, auth.ErrUnauthenticated):
		// The session outlived its user.
		s.reject(c, http.StatusUnauthorized, "Not authenticated", err)
	default:
		s.serverError(c, "Server error", err)
	}
}

func (s *Server) reject(c *gin.Context, status int, message string, err error) {
	s.logger.Debug("Request rejected",
		zap.String("path", c.FullPath()),
		zap.Uint("user_id", currentUser(c)),
		zap.Error(err),
	)
	c.JSON(status, gin.H{"error": message})
}

func (s *Server) serverError(c *gin.Context, message string, err error) {
	s.logger.Error("Request failed",
		zap.String("path", c.FullPath()),
		zap.Uint("user_id", currentUser(c)),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}

func (s *Server) badRequest(c *gin.Context, err error) {
	s.reject(c, http.StatusBadRequest, "Invalid request body", err)
}
