package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type RateLimitConfig struct {
	Enabled         bool
	RequestsPerMin  int
	BurstSize       int
	CleanupInterval time.Duration
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a per-client token bucket keyed by remote address.
// Idle client entries are dropped by a background sweep so the map does
// not grow without bound; Stop ends the sweep.
type RateLimiter struct {
	cfg       RateLimitConfig
	perSecond rate.Limit

	mu      sync.Mutex
	clients map[string]*clientLimiter

	stop     chan struct{}
	stopOnce sync.Once
}

func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.RequestsPerMin <= 0 {
		cfg.RequestsPerMin = 60
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = cfg.RequestsPerMin
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}

	l := &RateLimiter{
		cfg:       cfg,
		perSecond: rate.Limit(float64(cfg.RequestsPerMin) / 60.0),
		clients:   make(map[string]*clientLimiter),
		stop:      make(chan struct{}),
	}
	if cfg.Enabled {
		go l.sweep()
	}
	return l
}

// Stop ends the background sweep. Safe to call more than once.
func (l *RateLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *RateLimiter) sweep() {
	ticker := time.NewTicker(l.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.mu.Lock()
			for addr, client := range l.clients {
				if time.Since(client.lastSeen) > l.cfg.CleanupInterval {
					delete(l.clients, addr)
				}
			}
			l.mu.Unlock()
		case <-l.stop:
			return
		}
	}
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	if !l.cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		addr := c.ClientIP()

		l.mu.Lock()
		client, ok := l.clients[addr]
		if !ok {
			client = &clientLimiter{limiter: rate.NewLimiter(l.perSecond, l.cfg.BurstSize)}
			l.clients[addr] = client
		}
		client.lastSeen = time.Now()
		allowed := client.limiter.Allow()
		l.mu.Unlock()

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limited",
				"message": "Too many requests",
			})
			return
		}
		c.Next()
	}
}
