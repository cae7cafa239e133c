package repository

// Config selects and configures a Source.
type Config struct {
	Kind         string
	FixturesPath string
	SQLitePath   string
	DatabaseURL  string
}

// Option applies a configuration option to the PostgresSource.
type Option func(*PostgresSource)

// WithMaxConns bounds the connection pool size.
func WithMaxConns(n int32) Option {
	return func(s *PostgresSource) {
		if n > 0 {
			s.maxConns = n
		}
	}
}

// WithMinConns sets the number of idle connections kept open.
func WithMinConns(n int32) Option {
	return func(s *PostgresSource) {
		if n > 0 {
			s.minConns = n
		}
	}
}
