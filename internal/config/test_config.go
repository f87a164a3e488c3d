package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	cfg := defaultConfig()
	cfg.Database = DatabaseConfig{
		Path:    ":memory:",
		Timeout: 1 * time.Second,
	}
	cfg.Feed = FeedConfig{
		HTTPTimeout:       5 * time.Second,
		RefreshInterval:   1 * time.Minute,
		DefaultRetryAfter: 5 * time.Minute,
		UserAgent:         "pullfeed-test/1.0",
		MaxConcurrent:     2,
	}
	cfg.List.PageSize = 3
	return cfg
}
