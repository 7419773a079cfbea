//go:build integration

package trader

import (
	"fmt"
	"os"
	"testing"
	"time"

	"crypto-portfolio-go/internal/config"
)

// Run with: TEST_POSTGRES_DSN="host=... dbname=..." go test -tags integration ./internal/trader
func TestBuy_ConcurrentRequestsCannotOverdraw_Postgres(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	cfg := config.Database{Driver: "postgres", DSN: dsn, MaxOpenConns: 10, MaxIdleConns: 10}
	username := fmt.Sprintf("overdraw-%d", time.Now().UnixNano())
	engine, db, userID := setupTestDB(t, cfg, username, "500")

	assertConcurrentBuysCannotOverdraw(t, engine, db, userID)
}
