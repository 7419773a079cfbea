package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is a registered account. Users are never deleted.
type User struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	Username  string          `gorm:"uniqueIndex;not null" json:"username"`
	Password  string          `gorm:"not null" json:"-"`
	Balance   decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"balance"`
	CreatedAt time.Time       `json:"-"`
	UpdatedAt time.Time       `json:"-"`
}
