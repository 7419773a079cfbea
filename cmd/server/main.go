package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crypto-portfolio-go/internal/api"
	"crypto-portfolio-go/internal/auth"
	"crypto-portfolio-go/internal/coingecko"
	"crypto-portfolio-go/internal/config"
	"crypto-portfolio-go/internal/database"
	"crypto-portfolio-go/internal/logger"
	"crypto-portfolio-go/internal/trader"
	"crypto-portfolio-go/internal/watchlist"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// A .env file is optional; real environment variables take precedence.
	_ = godotenv.Load()

	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	if cfg.Logger.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := database.NewDatabase(cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)
	log.Info("Database connection successful and schema migrated.", zap.String("driver", cfg.Database.Driver))

	sessions, closeSessions, err := newSessionStore(&cfg, db, log)
	if err != nil {
		log.Fatal("Failed to initialize session store", zap.Error(err))
	}
	defer closeSessions()

	marketClient := coingecko.NewRestClient(&cfg.CoinGecko, log)

	server := api.NewServer(
		log,
		&cfg,
		auth.NewService(db, sessions, log, cfg.Auth.BcryptCost),
		trader.NewEngine(log, db),
		watchlist.NewService(db, log),
		marketClient,
	)
	server.Start()

	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
	<-sigchan
	log.Info("Shutdown signal received, gracefully shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		log.Error("API server shutdown failed", zap.Error(err))
	}

	log.Info("Server has been shut down.")
}

func newSessionStore(cfg *config.Config, db *gorm.DB, log *zap.Logger) (auth.SessionStore, func(), error) {
	if cfg.Session.Store != "redis" {
		return auth.NewDBSessionStore(db, cfg.Session.TTL, log), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
	}
	log.Info("Using redis session store", zap.String("addr", cfg.Redis.Addr))
	return auth.NewRedisSessionStore(rdb, cfg.Session.TTL), func() { rdb.Close() }, nil
}
