package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrUnknownSource = errors.New("unknown data source")
	ErrNotConfigured = errors.New("data source not configured")
	ErrFixture       = errors.New("invalid fixture")
)
