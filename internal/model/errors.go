package model

import "errors"

// Common errors used across the application
var (
	// Account errors
	ErrAccountNotFound    = errors.New("account not found")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrAccountExists      = errors.New("account id already exists")
	ErrNoExternalIdentity = errors.New("account has no external identity")
	ErrUnknownProvider    = errors.New("unknown provider")

	// Storage errors
	ErrStorageUnavailable = errors.New("storage unavailable")
)
