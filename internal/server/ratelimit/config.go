package ratelimit

import (
	"net/http"
	"time"

	"github.com/jonathan/career-advisor/internal/config"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window. Zero means unlimited.
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// FromSettings builds a limiter configuration from the server settings.
func FromSettings(settings config.RateLimitConfig) *Config {
	if settings.Disabled {
		return &Config{Enabled: false}
	}

	whitelist := make(map[string]bool, len(settings.Whitelist))
	for _, ip := range settings.Whitelist {
		whitelist[ip] = true
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    settings.RequestsPerMinute,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTimeout:     2 * time.Hour,
		Whitelist:       whitelist,
		Blacklist:       make(map[string]bool),
		EndpointConfigs: DefaultEndpointConfigs(settings.AnalysesPerHour, settings.AnalysisBurst),
	}
}

// DefaultEndpointConfigs returns the endpoint-specific configurations.
// Every route that reaches the remote service shares the analysis budget.
func DefaultEndpointConfigs(analysesPerHour, burst int) []EndpointConfig {
	if burst <= 0 {
		burst = 1
	}
	return []EndpointConfig{
		// Tier 1: remote analysis (strictest limits)
		{Path: "/analyze", Method: http.MethodPost, Limit: analysesPerHour, Window: time.Hour, Burst: burst},
		{Path: "/api/analysis", Method: http.MethodPost, Limit: analysesPerHour, Window: time.Hour, Burst: burst},
		{Path: "/api/analysis/stream", Method: http.MethodPost, Limit: analysesPerHour, Window: time.Hour, Burst: burst},

		// Tier 2: share-link encoding (moderate limits)
		{Path: "/api/share", Method: http.MethodPost, Limit: 100, Window: time.Minute, Burst: 10},

		// Tier 3: static assets (unlimited)
		{Path: "/static/", Method: http.MethodGet, Limit: 0},

		// Tier 4: everything else - handled by default limit
	}
}
