package server

import (
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/lawnchairsociety/dungeongen/internal/config"
)

// ConnStats is a snapshot of the connection limiter.
type ConnStats struct {
	Active    int
	UniqueIPs int
	Rejected  int
}

// ConnLimiter caps concurrent sessions per IP and in total, across both
// listeners.
type ConnLimiter struct {
	mu       sync.Mutex
	perIP    map[string]int
	active   int
	rejected int
	maxPerIP int
	maxTotal int
}

// NewConnLimiter creates a new connection limiter with the given config.
// A zero limit means unlimited.
func NewConnLimiter(cfg config.ConnectionsConfig) *ConnLimiter {
	return &ConnLimiter{
		perIP:    make(map[string]int),
		maxPerIP: cfg.MaxPerIP,
		maxTotal: cfg.MaxTotal,
	}
}

// TryAcquire takes a session slot for ip, or reports false and counts the
// rejection when either limit is reached.
func (c *ConnLimiter) TryAcquire(ip string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if (c.maxTotal > 0 && c.active >= c.maxTotal) ||
		(c.maxPerIP > 0 && c.perIP[ip] >= c.maxPerIP) {
		c.rejected++
		return false
	}

	c.perIP[ip]++
	c.active++
	return true
}

// Release gives back a slot taken by TryAcquire. Releasing an IP that holds
// no slot is a no-op.
func (c *ConnLimiter) Release(ip string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.perIP[ip]
	if n == 0 {
		return
	}
	if n > 1 {
		c.perIP[ip] = n - 1
	} else {
		delete(c.perIP, ip)
	}
	c.active--
}

// Stats returns the current counts.
func (c *ConnLimiter) Stats() ConnStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ConnStats{Active: c.active, UniqueIPs: len(c.perIP), Rejected: c.rejected}
}

// IPCount returns the number of open sessions from ip.
func (c *ConnLimiter) IPCount(ip string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.perIP[ip]
}

// extractIP extracts the IP address from a remote address string (ip:port format).
func extractIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

// getRealIP prefers the first X-Forwarded-For entry, then X-Real-IP, then
// the direct remote address.
func getRealIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return extractIP(r.RemoteAddr)
}
