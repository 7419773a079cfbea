package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding is the amount of one asset owned by a user.
// There is at most one row per (user, symbol); a row emptied by a sell is removed.
type Holding struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	UserID    uint            `gorm:"uniqueIndex:idx_portfolio_user_symbol;not null" json:"-"`
	Symbol    string          `gorm:"uniqueIndex:idx_portfolio_user_symbol;not null" json:"symbol"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"amount"`
	CreatedAt time.Time       `json:"-"`
	UpdatedAt time.Time       `json:"-"`
}

// TableName keeps the historical table name.
func (Holding) TableName() string { return "portfolio" }
