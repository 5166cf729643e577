package domain

import "errors"

var (
	ErrNotFound           = errors.New("resource not found")
	ErrPersistence        = errors.New("failed to persist record")
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNoSleepLogs        = errors.New("no sleep logs")
	ErrInvalidInput       = errors.New("invalid input")
)
