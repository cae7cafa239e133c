package api

import (
	"strings"

	"github.com/okian/staffwise/pkg/logger"
)

// Option configures a Server.
type Option func(*Server)

// WithServiceName sets the name reported by /health.
func WithServiceName(name string) Option {
	return func(s *Server) {
		if strings.TrimSpace(name) != "" {
			s.serviceName = name
		}
	}
}

// WithAllowedOrigins sets the CORS origins. "*" allows any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.allowedOrigins = origins
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}
