// internal/middleware/rate_limit.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// clientBucket pairs a token bucket with its last activity time so idle
// clients can be evicted.
type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiter keeps one token bucket per client IP. Filing agents work in
// bursts (saving a form fires several requests at once), so bursts are
// allowed while the sustained rate stays capped.
type ipLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	rate    rate.Limit
	burst   int
}

const clientIdleEviction = 3 * time.Minute

func newIPLimiter(r rate.Limit, burst int) *ipLimiter {
	l := &ipLimiter{
		clients: make(map[string]*clientBucket),
		rate:    r,
		burst:   burst,
	}

	go l.evictIdle()

	return l
}

func (l *ipLimiter) evictIdle() {
	for {
		time.Sleep(time.Minute)
		l.mu.Lock()
		for ip, c := range l.clients {
			if time.Since(c.lastSeen) > clientIdleEviction {
				delete(l.clients, ip)
			}
		}
		l.mu.Unlock()
	}
}

func (l *ipLimiter) bucket(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[ip]
	if !ok {
		c = &clientBucket{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = time.Now()
	return c.limiter
}

func (l *ipLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.bucket(c.ClientIP()).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// Per-surface limiters. Auth is tight against credential stuffing, document
// uploads against bulk pushes of scanned filings, and rule authoring against
// a runaway admin script rewriting a jurisdiction's rule store.
var (
	apiLimiter       = newIPLimiter(rate.Every(time.Second), 15)
	authLimiter      = newIPLimiter(rate.Every(time.Minute), 5)
	uploadLimiter    = newIPLimiter(rate.Every(time.Minute), 10)
	ruleAdminLimiter = newIPLimiter(rate.Every(time.Second), 30)
)

func GeneralRateLimit() gin.HandlerFunc {
	return apiLimiter.Middleware()
}

func AuthRateLimit() gin.HandlerFunc {
	return authLimiter.Middleware()
}

func UploadRateLimit() gin.HandlerFunc {
	return uploadLimiter.Middleware()
}

func RuleAdminRateLimit() gin.HandlerFunc {
	return ruleAdminLimiter.Middleware()
}
