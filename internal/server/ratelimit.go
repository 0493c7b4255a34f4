package server

import (
	"sync"
	"time"

	"github.com/lawnchairsociety/dungeongen/internal/config"
)

// GenRateLimiter counts generation requests per IP in fixed windows. A
// client that goes over the limit is locked out, and each repeat lockout
// doubles up to a maximum.
type GenRateLimiter struct {
	mu              sync.Mutex
	clients         map[string]*requestInfo
	maxRequests     int
	window          time.Duration
	lockout         time.Duration
	maxLockout      time.Duration
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
	now             func() time.Time
}

type requestInfo struct {
	windowStart  time.Time
	requests     int
	lockedUntil  time.Time
	lockoutCount int
}

// NewGenRateLimiter creates a rate limiter and starts its cleanup goroutine.
func NewGenRateLimiter(cfg config.RateLimitConfig) *GenRateLimiter {
	rl := &GenRateLimiter{
		clients:         make(map[string]*requestInfo),
		maxRequests:     cfg.MaxRequests,
		window:          time.Duration(cfg.WindowSeconds) * time.Second,
		lockout:         time.Duration(cfg.LockoutSeconds) * time.Second,
		maxLockout:      time.Duration(cfg.MaxLockoutSeconds) * time.Second,
		cleanupInterval: 5 * time.Minute,
		stopCleanup:     make(chan struct{}),
		now:             time.Now,
	}

	// Use sensible defaults if not configured
	if rl.maxRequests == 0 {
		rl.maxRequests = 30
	}
	if rl.window == 0 {
		rl.window = time.Minute
	}
	if rl.lockout == 0 {
		rl.lockout = 30 * time.Second
	}
	if rl.maxLockout < rl.lockout {
		rl.maxLockout = rl.lockout
	}

	go rl.cleanupLoop()

	return rl
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (rl *GenRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCleanup) })
}

// Allow records one request from ip. When the request is refused it returns
// false and how long the client must wait.
func (rl *GenRateLimiter) Allow(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	info, exists := rl.clients[ip]
	if !exists {
		info = &requestInfo{windowStart: now}
		rl.clients[ip] = info
	}

	if now.Before(info.lockedUntil) {
		return false, info.lockedUntil.Sub(now)
	}
	if now.Sub(info.windowStart) >= rl.window {
		info.windowStart = now
		info.requests = 0
	}

	info.requests++
	if info.requests <= rl.maxRequests {
		return true, 0
	}

	info.lockoutCount++
	d := rl.lockout
	for i := 1; i < info.lockoutCount; i++ {
		// Check before multiplication to prevent overflow
		if d >= rl.maxLockout/2 {
			d = rl.maxLockout
			break
		}
		d *= 2
	}
	if d > rl.maxLockout {
		d = rl.maxLockout
	}
	info.lockedUntil = now.Add(d)
	info.requests = 0
	info.windowStart = info.lockedUntil
	return false, d
}

// IsLocked checks if the given IP is currently locked out.
func (rl *GenRateLimiter) IsLocked(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	info, exists := rl.clients[ip]
	if !exists {
		return false, 0
	}
	if now := rl.now(); now.Before(info.lockedUntil) {
		return true, info.lockedUntil.Sub(now)
	}
	return false, 0
}

// Requests returns the count in the ip's current window.
func (rl *GenRateLimiter) Requests(ip string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if info, exists := rl.clients[ip]; exists {
		return info.requests
	}
	return 0
}

func (rl *GenRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCleanup:
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

// cleanup forgets clients whose lockout and window have both run out long ago.
func (rl *GenRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-10 * time.Minute)
	for ip, info := range rl.clients {
		if info.lockedUntil.Before(cutoff) && info.windowStart.Add(rl.window).Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}
