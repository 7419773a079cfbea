// Package models holds the gorm models persisted by the portfolio service.
package models

// All returns every model managed by the schema migration.
func All() []any {
	return []any{&User{}, &Holding{}, &Transaction{}, &WatchlistEntry{}, &Session{}}
}
