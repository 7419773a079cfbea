package auth

import "errors"

var (
	ErrDuplicateUser      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrInvalidInput       = errors.New("username and password are required")
	ErrInvalidAmount      = errors.New("initial balance must not be negative")
	ErrSessionNotFound    = errors.New("session not found")
)
