package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"crypto-portfolio-go/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service registers users and manages their login sessions.
type Service struct {
	db         *gorm.DB
	sessions   SessionStore
	logger     *zap.Logger
	bcryptCost int
}

// NewService creates an auth service. A bcryptCost outside bcrypt's accepted
// range falls back to bcrypt.DefaultCost.
func NewService(db *gorm.DB, sessions SessionStore, logger *zap.Logger, bcryptCost int) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		db:         db,
		sessions:   sessions,
		logger:     logger.Named("auth"),
		bcryptCost: bcryptCost,
	}
}

// Register creates a user holding initialBalance.
func (s *Service) Register(ctx context.Context, username, password string, initialBalance decimal.Decimal) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}
	if initialBalance.IsNegative() {
		return nil, ErrInvalidAmount
	}

	var existing models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil, ErrDuplicateUser
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Username: username,
		Password: string(hash),
		Balance:  initialBalance,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return &user, nil
}

// Login verifies the credentials and opens a session for the user.
func (s *Service) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.logger.Debug("Password mismatch", zap.Uint("user_id", user.ID))
		return "", nil, ErrInvalidCredentials
	}

	sessionID, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info("User logged in", zap.Uint("user_id", user.ID))
	return sessionID, &user, nil
}

// Logout destroys the session. Unknown sessions are ignored.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Destroy(ctx, sessionID)
}

// Authenticate resolves a session id to the user it belongs to.
func (s *Service) Authenticate(ctx context.Context, sessionID string) (uint, error) {
	if sessionID == "" {
		return 0, ErrUnauthenticated
	}
	userID, err := s.sessions.Lookup(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return 0, ErrUnauthenticated
	}
	if err != nil {
		return 0, err
	}
	return userID, nil
}
