package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/hepuentes/creditappweb/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// window tracks request counts of one IP within a fixed window.
type window struct {
	count int
	end   time.Time
}

// Limiter counts requests per client IP in fixed windows.
type Limiter struct {
	limit  int
	period time.Duration
	msg    string

	mu  sync.Mutex
	ips map[string]*window
	now func() time.Time
}

func NewLimiter(limit int, period time.Duration, msg string) *Limiter {
	return &Limiter{limit: limit, period: period, msg: msg, ips: map[string]*window{}, now: time.Now}
}

// allow records one request from ip and reports whether it is within the limit.
func (l *Limiter) allow(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	w, ok := l.ips[ip]
	if !ok || now.After(w.end) {
		w = &window{end: now.Add(l.period)}
		l.ips[ip] = w
	}
	w.count++
	return w.count <= l.limit, w.end
}

// Middleware rejects requests over the limit with 429.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, end := l.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", end.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.msg))
			return
		}
		c.Next()
	}
}

// purge drops expired windows and returns how many were removed.
func (l *Limiter) purge() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	n := 0
	for ip, w := range l.ips {
		if now.After(w.end) {
			delete(l.ips, ip)
			n++
		}
	}
	return n
}

// StartPurge removes expired entries every interval until ctx is done, so IPs
// that never return do not accumulate.
func (l *Limiter) StartPurge(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := l.purge(); n > 0 {
					log.Debug().Int("entries_purged", n).Msg("rate limiter purged")
				}
			}
		}
	}()
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() *Limiter {
	return NewLimiter(20, time.Minute, "Demasiados intentos de login. Intente en 1 minuto.")
}

// RateLimiter is the general API limiter.
func RateLimiter(limit int, period time.Duration) *Limiter {
	return NewLimiter(limit, period, "Demasiadas solicitudes. Intente nuevamente en un momento.")
}
