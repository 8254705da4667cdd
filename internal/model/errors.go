package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// Hidden word errors
	ErrWordNotFound = errors.New("hidden word not found")
	ErrEmptyWord    = errors.New("hidden word is empty")
)
