package watchlist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"crypto-portfolio-go/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrInvalidSymbol = errors.New("symbol is required")

// Service manages the symbols each user tracks.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger.Named("watchlist")}
}

// List returns the user's watchlist ordered by symbol.
func (s *Service) List(ctx context.Context, userID uint) ([]models.WatchlistEntry, error) {
	entries := make([]models.WatchlistEntry, 0)
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("symbol").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("could not load watchlist: %w", err)
	}
	return entries, nil
}

// Add puts symbol on the user's watchlist. Adding a symbol that is already
// tracked leaves the existing entry untouched.
func (s *Service) Add(ctx context.Context, userID uint, symbol, name string) error {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return ErrInvalidSymbol
	}
	entry := models.WatchlistEntry{
		UserID: userID,
		Symbol: symbol,
		Name:   strings.TrimSpace(name),
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entry)
	if result.Error != nil {
		return fmt.Errorf("could not add %s to watchlist: %w", symbol, result.Error)
	}
	s.logger.Debug("Watchlist add",
		zap.Uint("user_id", userID),
		zap.String("symbol", symbol),
		zap.Bool("inserted", result.RowsAffected > 0))
	return nil
}

// Remove deletes symbol from the user's watchlist. Removing a symbol that is
// not tracked is a no-op.
func (s *Service) Remove(ctx context.Context, userID uint, symbol string) error {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND symbol = ?", userID, strings.TrimSpace(symbol)).
		Delete(&models.WatchlistEntry{})
	if result.Error != nil {
		return fmt.Errorf("could not remove %s from watchlist: %w", symbol, result.Error)
	}
	s.logger.Debug("Watchlist remove",
		zap.Uint("user_id", userID),
		zap.String("symbol", symbol),
		zap.Int64("deleted", result.RowsAffected))
	return nil
}
