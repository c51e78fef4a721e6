package domain

import "errors"

// Domain-level errors
var (
	ErrProductNotFound    = errors.New("product not found")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrSessionNotFound    = errors.New("session not found")
)
