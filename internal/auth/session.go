package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"crypto-portfolio-go/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SessionStore keeps server-side sessions keyed by an opaque id.
type SessionStore interface {
	// Create starts a session for userID and returns its id.
	Create(ctx context.Context, userID uint) (string, error)
	// Lookup returns the user bound to id, or ErrSessionNotFound.
	Lookup(ctx context.Context, id string) (uint, error)
	// Destroy removes the session. Unknown ids are ignored.
	Destroy(ctx context.Context, id string) error
}

func newSessionID() string {
	return uuid.NewString()
}

// DBSessionStore persists sessions in the sessions table.
type DBSessionStore struct {
	db     *gorm.DB
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

var _ SessionStore = (*DBSessionStore)(nil)

// NewDBSessionStore creates a session store backed by db.
func NewDBSessionStore(db *gorm.DB, ttl time.Duration, logger *zap.Logger) *DBSessionStore {
	return &DBSessionStore{db: db, ttl: ttl, logger: logger.Named("sessions"), now: time.Now}
}

func (s *DBSessionStore) Create(ctx context.Context, userID uint) (string, error) {
	session := models.Session{
		ID:        newSessionID(),
		UserID:    userID,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return session.ID, nil
}

func (s *DBSessionStore) Lookup(ctx context.Context, id string) (uint, error) {
	if id == "" {
		return 0, ErrSessionNotFound
	}
	var session models.Session
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up session: %w", err)
	}
	if session.Expired(s.now()) {
		// Expired rows are removed lazily.
		if err := s.db.WithContext(ctx).Delete(&models.Session{}, "id = ?", id).Error; err != nil {
			s.logger.Debug("Failed to remove expired session", zap.Uint("user_id", session.UserID), zap.Error(err))
		}
		return 0, ErrSessionNotFound
	}
	return session.UserID, nil
}

func (s *DBSessionStore) Destroy(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&models.Session{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

// RedisSessionStore keeps sessions as expiring redis keys.
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ SessionStore = (*RedisSessionStore)(nil)

// NewRedisSessionStore creates a session store backed by rdb.
func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func sessionKey(id string) string {
	return "session:" + id
}

func (s *RedisSessionStore) Create(ctx context.Context, userID uint) (string, error) {
	id := newSessionID()
	if err := s.rdb.Set(ctx, sessionKey(id), userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return id, nil
}

func (s *RedisSessionStore) Lookup(ctx context.Context, id string) (uint, error) {
	if id == "" {
		return 0, ErrSessionNotFound
	}
	val, err := s.rdb.Get(ctx, sessionKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up session: %w", err)
	}
	userID, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt session %s: %w", id, err)
	}
	return uint(userID), nil
}

func (s *RedisSessionStore) Destroy(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}
