package echomw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

/*
IPRateLimiter keeps one token bucket per client IP. Buckets idle for longer
than the idle window are dropped on the next request after the window.
*/
type IPRateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewIPRateLimiter allows requestsPerSecond per IP with the given burst. requestsPerSecond <= 0 disables limiting.
func NewIPRateLimiter(requestsPerSecond float64, burst int) *IPRateLimiter {
	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}
	return &IPRateLimiter{
		visitors: map[string]*visitor{},
		limit:    limit,
		burst:    burst,
		idle:     time.Minute,
		now:      time.Now,
	}
}

func (l *IPRateLimiter) limiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > l.idle {
		for key, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.idle {
				delete(l.visitors, key)
			}
		}
		l.lastSweep = now
	}

	v, exists := l.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

// Middleware answers 429 with a Retry-After hint once an IP runs out of tokens.
func (l *IPRateLimiter) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		limiter := l.limiter(c.RealIP())
		reservation := limiter.ReserveN(l.now(), 1)
		if !reservation.OK() {
			return tooManyRequests(c, time.Second)
		}
		if delay := reservation.DelayFrom(l.now()); delay > 0 {
			reservation.CancelAt(l.now())
			return tooManyRequests(c, delay)
		}
		return next(c)
	}
}

func tooManyRequests(c echo.Context, retryAfter time.Duration) error {
	seconds := int(math.Ceil(retryAfter.Seconds()))
	c.Response().Header().Set(echo.HeaderRetryAfter, strconv.Itoa(seconds))
	return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
}
