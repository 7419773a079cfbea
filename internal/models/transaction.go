package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the side of a recorded trade.
type TransactionType string

const (
	TransactionBuy  TransactionType = "buy"
	TransactionSell TransactionType = "sell"
)

// Valid reports whether t is a known side.
func (t TransactionType) Valid() bool {
	return t == TransactionBuy || t == TransactionSell
}

// Transaction represents a completed trade record in the database.
// Rows are append-only.
type Transaction struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	UserID    uint            `gorm:"index:idx_transactions_user_ts;not null" json:"-"`
	Symbol    string          `gorm:"not null" json:"symbol"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"amount"`
	Price     decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"price"`
	Total     decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"total"`
	Type      TransactionType `gorm:"type:varchar(4);not null" json:"type"` // "buy" or "sell"
	Timestamp time.Time       `gorm:"index:idx_transactions_user_ts;not null" json:"timestamp"`
}
