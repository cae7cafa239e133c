// Package loadtest generates synthetic staffing data and probes a running
// server with it, checking every response against the recommendation rules.
package loadtest

import "time"

// Config holds configuration for a load test.
type Config struct {
	BaseURL  string        // Base URL of the service
	Workers  int           // Number of concurrent requests
	Timeout  time.Duration // HTTP request timeout
	Projects []int64       // Project ids to probe; empty probes every fixture project
}

// GenerateConfig sizes a synthetic fixture.
type GenerateConfig struct {
	Seed                   uint64
	Employees              int
	Projects               int
	RequirementsPerProject int
	ManagerRatio           float64 // share of employees with a manager title
	UnavailableRatio       float64 // share of employees not available
}

// Stats holds run statistics.
type Stats struct {
	Requests        int
	Failed          int
	Violations      int
	Recommendations int
	Assigned        int
	StartTime       time.Time
	Duration        time.Duration
}
