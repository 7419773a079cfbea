package trader

import (
	"context"
	"fmt"

	"crypto-portfolio-go/internal/models"
)

// Portfolio returns the user's holdings ordered by symbol.
func (e *Engine) Portfolio(ctx context.Context, userID uint) ([]models.Holding, error) {
	holdings := make([]models.Holding, 0)
	if err := e.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("symbol").
		Find(&holdings).Error; err != nil {
		return nil, fmt.Errorf("could not load portfolio: %w", err)
	}
	return holdings, nil
}

// Transactions returns the user's trade history, most recent first.
func (e *Engine) Transactions(ctx context.Context, userID uint) ([]models.Transaction, error) {
	trades := make([]models.Transaction, 0)
	// Order by most recent first; id breaks ties between equal timestamps.
	if err := e.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp desc").
		Order("id desc").
		Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("could not load transactions: %w", err)
	}
	return trades, nil
}
