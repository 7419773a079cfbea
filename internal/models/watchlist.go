package models

import "time"

// WatchlistEntry is a symbol a user tracks without owning it.
type WatchlistEntry struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"uniqueIndex:idx_watchlist_user_symbol;not null" json:"-"`
	Symbol    string    `gorm:"uniqueIndex:idx_watchlist_user_symbol;not null" json:"symbol"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"-"`
}

func (WatchlistEntry) TableName() string { return "watchlist" }
