package loadtest

import "errors"

// Sentinel kinds for load test failures.
var (
	ErrUnhealthy  = errors.New("service is not healthy")
	ErrViolations = errors.New("responses violate recommendation rules")
	ErrStatus     = errors.New("unexpected HTTP status")
)
