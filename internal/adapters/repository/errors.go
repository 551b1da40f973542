package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound     = errors.New("recommendation not found")
	ErrInvalidInput = errors.New("invalid store input")
)
