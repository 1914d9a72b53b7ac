// Package ratelimit provides per-client, per-endpoint token bucket rate limiting.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// bucket pairs a token bucket with the time it was last used.
type bucket struct {
	limiter  *rate.Limiter
	capacity int
	lastSeen time.Time
}

// allow consumes a token if one is available and reports the bucket status.
func (b *bucket) allow(now time.Time) (allowed bool, remaining int, reset time.Time, retryAfter time.Duration) {
	allowed = b.limiter.AllowN(now, 1)

	tokens := b.limiter.TokensAt(now)
	remaining = max(int(math.Floor(tokens)), 0)

	perSecond := float64(b.limiter.Limit())
	reset = now
	if perSecond > 0 && tokens < float64(b.capacity) {
		reset = now.Add(secondsToDuration((float64(b.capacity) - tokens) / perSecond))
	}
	if !allowed && perSecond > 0 {
		retryAfter = secondsToDuration((1 - tokens) / perSecond)
	}
	return allowed, remaining, reset, retryAfter
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Limiter manages rate limiting for multiple clients.
type Limiter struct {
	buckets       map[string]*bucket // client:path:method -> bucket
	mu            sync.Mutex
	config        *Config
	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
	stopOnce      sync.Once
	now           func() time.Time
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	// IdleTimeout is how long an unused bucket is kept.
	IdleTimeout     time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// NewLimiter creates a new rate limiter with the given configuration.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
			IdleTimeout:     time.Hour,
			Whitelist:       make(map[string]bool),
			Blacklist:       make(map[string]bool),
		}
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = time.Hour
	}

	limiter := &Limiter{
		buckets: make(map[string]*bucket),
		config:  config,
		now:     time.Now,
	}

	if config.Enabled && config.CleanupInterval > 0 {
		limiter.cleanupTicker = time.NewTicker(config.CleanupInterval)
		limiter.cleanupStop = make(chan struct{})
		go limiter.cleanup()
	}

	return limiter
}

// Allow checks if a request from the given client is allowed for the specified endpoint.
// Returns true if allowed, false if rate limited, along with rate limit information.
func (l *Limiter) Allow(clientID string, endpoint string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	endpointConfig := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	matched := endpointConfig != nil
	if !matched {
		endpointConfig = &EndpointConfig{
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
			Burst:  l.config.DefaultLimit, // Use limit as burst for default
		}
	}
	key := bucketKey(clientID, endpointConfig, matched)

	// Unlimited endpoint (e.g., health check)
	if endpointConfig.Limit <= 0 || endpointConfig.Window <= 0 {
		return true, Info{Allowed: true}
	}

	now := l.now()
	b := l.getBucket(key, *endpointConfig, now)
	allowed, remaining, reset, retryAfter := b.allow(now)

	return allowed, Info{
		Allowed:    allowed,
		Limit:      endpointConfig.Limit,
		Remaining:  remaining,
		ResetTime:  reset,
		RetryAfter: retryAfter,
	}
}

// getBucket gets or creates the bucket for key.
func (l *Limiter) getBucket(key string, ec EndpointConfig, now time.Time) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok := l.buckets[key]; ok {
		b.lastSeen = now
		return b
	}

	capacity := ec.Burst
	if capacity <= 0 {
		capacity = ec.Limit
	}
	every := ec.Window / time.Duration(ec.Limit)
	b := &bucket{
		limiter:  rate.NewLimiter(rate.Every(every), capacity),
		capacity: capacity,
		lastSeen: now,
	}
	l.buckets[key] = b
	return b
}

// cleanup removes old unused buckets to prevent memory leaks.
func (l *Limiter) cleanup() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.cleanupBuckets()
		case <-l.cleanupStop:
			return
		}
	}
}

// cleanupBuckets removes buckets idle for longer than IdleTimeout.
func (l *Limiter) cleanupBuckets() {
	cutoff := l.now().Add(-l.config.IdleTimeout)

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// size returns the number of live buckets.
func (l *Limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		if l.cleanupTicker != nil {
			l.cleanupTicker.Stop()
		}
		if l.cleanupStop != nil {
			close(l.cleanupStop)
		}
	})
}
