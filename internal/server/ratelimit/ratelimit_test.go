package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/career-advisor/internal/config"
)

// frozen pins the limiter clock so refills only happen when a test advances it.
func frozen(l *Limiter, start time.Time) *time.Time {
	now := start
	l.now = func() time.Time { return now }
	return &now
}

func TestLimiter_Allow(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
	})
	defer limiter.Stop()
	frozen(limiter, time.Unix(1_700_000_000, 0))

	clientID := "127.0.0.1"

	// Should allow requests up to limit
	for i := 0; i < 10; i++ {
		allowed, rateInfo := limiter.Allow(clientID, "/test", "GET")
		if !allowed {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
		if rateInfo.Limit != 10 {
			t.Errorf("Expected limit 10, got %d", rateInfo.Limit)
		}
		if rateInfo.Remaining != 10-i-1 {
			t.Errorf("Expected remaining %d, got %d", 10-i-1, rateInfo.Remaining)
		}
	}

	// 11th request should be denied
	allowed, rateInfo := limiter.Allow(clientID, "/test", "GET")
	if allowed {
		t.Error("Expected 11th request to be denied")
	}
	if rateInfo.Remaining != 0 {
		t.Errorf("Expected remaining 0, got %d", rateInfo.Remaining)
	}
	if rateInfo.RetryAfter <= 0 {
		t.Error("Expected retry after to be positive")
	}
	if !rateInfo.ResetTime.After(time.Unix(1_700_000_000, 0)) {
		t.Error("Reset time should be in the future")
	}
}

func TestLimiter_Refill(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  60,
		DefaultWindow: time.Minute, // one token per second
	})
	defer limiter.Stop()
	now := frozen(limiter, time.Unix(1_700_000_000, 0))

	for i := 0; i < 60; i++ {
		limiter.Allow("c", "/x", "GET")
	}
	if allowed, info := limiter.Allow("c", "/x", "GET"); allowed {
		t.Error("Expected request to be denied once the bucket is empty")
	} else if info.RetryAfter > time.Second {
		t.Errorf("Expected retry after of at most 1s, got %s", info.RetryAfter)
	}

	*now = now.Add(1100 * time.Millisecond)

	if allowed, _ := limiter.Allow("c", "/x", "GET"); !allowed {
		t.Error("Expected request to be allowed after refill")
	}
	if allowed, _ := limiter.Allow("c", "/x", "GET"); allowed {
		t.Error("Expected request to be denied after consuming refilled token")
	}
}

func TestLimiter_Whitelist(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"127.0.0.1": true},
	})
	defer limiter.Stop()

	// Whitelisted IP should always be allowed
	for i := 0; i < 100; i++ {
		allowed, rateInfo := limiter.Allow("127.0.0.1", "/test", "GET")
		if !allowed {
			t.Errorf("Expected whitelisted request %d to be allowed", i+1)
		}
		if rateInfo.Limit != 0 {
			t.Errorf("Expected limit 0 for whitelisted, got %d", rateInfo.Limit)
		}
	}
}

func TestLimiter_Blacklist(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		Blacklist:     map[string]bool{"192.168.1.1": true},
	})
	defer limiter.Stop()

	allowed, _ := limiter.Allow("192.168.1.1", "/test", "GET")
	if allowed {
		t.Error("Expected blacklisted request to be denied")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: false})
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		allowed, rateInfo := limiter.Allow("127.0.0.1", "/test", "GET")
		if !allowed {
			t.Errorf("Expected request %d to be allowed when disabled", i+1)
		}
		if rateInfo.Limit != 0 {
			t.Errorf("Expected limit 0 when disabled, got %d", rateInfo.Limit)
		}
	}
}

func TestLimiter_AnalysisRoutesShareBudget(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(5, 3),
	})
	defer limiter.Stop()
	frozen(limiter, time.Unix(1_700_000_000, 0))

	clientID := "127.0.0.1"
	paths := []string{"/analyze", "/api/analysis", "/api/analysis/stream"}
	for i, path := range paths {
		allowed, rateInfo := limiter.Allow(clientID, path, "POST")
		if !allowed {
			t.Errorf("Expected request %d to %s to be allowed", i+1, path)
		}
		if rateInfo.Limit != 5 {
			t.Errorf("Expected limit 5, got %d", rateInfo.Limit)
		}
	}

	// Burst of 3 is spent across the three routes
	for _, path := range paths {
		if allowed, _ := limiter.Allow(clientID, path, "POST"); allowed {
			t.Errorf("Expected %s to be denied after the shared burst", path)
		}
	}

	// Another client is unaffected
	if allowed, _ := limiter.Allow("10.0.0.2", "/analyze", "POST"); !allowed {
		t.Error("Expected a different client to be allowed")
	}

	// Unmatched endpoints use the default limit
	allowed, rateInfo := limiter.Allow(clientID, "/", "GET")
	if !allowed {
		t.Error("Expected page request to be allowed")
	}
	if rateInfo.Limit != 1000 {
		t.Errorf("Expected default limit 1000, got %d", rateInfo.Limit)
	}
}

func TestLimiter_UnlimitedEndpoints(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:         true,
		DefaultLimit:    1,
		DefaultWindow:   time.Hour,
		EndpointConfigs: DefaultEndpointConfigs(1, 1),
	})
	defer limiter.Stop()

	for i := 0; i < 20; i++ {
		if allowed, _ := limiter.Allow("c", "/health", "GET"); !allowed {
			t.Fatalf("Expected health check %d to be allowed", i+1)
		}
		if allowed, _ := limiter.Allow("c", "/static/app.js", "GET"); !allowed {
			t.Fatalf("Expected static asset %d to be allowed", i+1)
		}
	}
	if n := limiter.size(); n != 0 {
		t.Errorf("Expected no buckets for unlimited endpoints, got %d", n)
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
	})
	defer limiter.Stop()
	frozen(limiter, time.Unix(1_700_000_000, 0))

	var wg sync.WaitGroup
	allowedCount := 0
	var mu sync.Mutex

	// Make 200 concurrent requests (should only allow 100)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed, _ := limiter.Allow("127.0.0.1", "/test", "GET")
			if allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	if allowedCount != 100 {
		t.Errorf("Expected 100 allowed requests, got %d", allowedCount)
	}
}

func TestLimiter_Cleanup(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
		IdleTimeout:   time.Hour,
	})
	defer limiter.Stop()
	now := frozen(limiter, time.Unix(1_700_000_000, 0))

	for i := 0; i < 10; i++ {
		limiter.Allow(fmt.Sprintf("127.0.0.%d", i+1), "/test", "GET")
	}

	*now = now.Add(50 * time.Minute)
	for i := 0; i < 5; i++ {
		limiter.Allow(fmt.Sprintf("127.0.0.%d", i+1), "/test", "GET")
	}

	*now = now.Add(20 * time.Minute)
	limiter.cleanupBuckets()

	if n := limiter.size(); n != 5 {
		t.Errorf("Expected 5 recently used buckets to survive cleanup, got %d", n)
	}
}

func TestLimiter_StopTwice(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Second, CleanupInterval: time.Minute})
	limiter.Stop()
	limiter.Stop()
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()

	if limiter == nil {
		t.Fatal("Expected limiter to be created with nil config")
	}

	allowed, rateInfo := limiter.Allow("127.0.0.1", "/test", "GET")
	if !allowed {
		t.Error("Expected request to be allowed with default config")
	}
	if rateInfo.Limit != 1000 {
		t.Errorf("Expected default limit 1000, got %d", rateInfo.Limit)
	}
}

func TestFromSettings(t *testing.T) {
	cfg := FromSettings(config.RateLimitConfig{
		RequestsPerMinute: 60,
		AnalysesPerHour:   10,
		AnalysisBurst:     2,
		Whitelist:         []string{"10.0.0.1"},
	})
	if !cfg.Enabled {
		t.Fatal("Expected limiter to be enabled")
	}
	if cfg.DefaultLimit != 60 || cfg.DefaultWindow != time.Minute {
		t.Errorf("Unexpected default limit %d/%s", cfg.DefaultLimit, cfg.DefaultWindow)
	}
	if !cfg.Whitelist["10.0.0.1"] {
		t.Error("Expected whitelist entry")
	}
	ec := MatchEndpoint("/api/analysis", "POST", cfg.EndpointConfigs)
	if ec == nil || ec.Limit != 10 || ec.Burst != 2 {
		t.Errorf("Unexpected analysis endpoint config %+v", ec)
	}

	disabled := FromSettings(config.RateLimitConfig{Disabled: true})
	if disabled.Enabled {
		t.Error("Expected disabled limiter config")
	}
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs(5, 1)

	tests := []struct {
		path, method string
		wantPath     string
		wantNil      bool
	}{
		{path: "/analyze", method: "POST", wantPath: "/analyze"},
		{path: "/api/analysis/stream", method: "POST", wantPath: "/api/analysis/stream"},
		{path: "/static/style.css", method: "GET", wantPath: "/static/"},
		{path: "/health", method: "GET", wantPath: ""},
		{path: "/analyze", method: "GET", wantNil: true},
		{path: "/api/share/abc", method: "GET", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantNil {
				if got != nil {
					t.Errorf("Expected no match, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("Expected a match")
			}
			if got.Path != tt.wantPath {
				t.Errorf("Expected path %q, got %q", tt.wantPath, got.Path)
			}
		})
	}
}
