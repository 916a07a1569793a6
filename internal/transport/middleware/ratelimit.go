package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// idleTTL is how long a client's limiter survives without requests.
const idleTTL = 10 * time.Minute

// RateLimiter limits requests per client IP with one token bucket per client
// and route class. Idle buckets expire from the store.
type RateLimiter struct {
	limiters *cache.Cache
}

// NewRateLimiter creates a RateLimiter whose expired buckets are swept every
// cleanupInterval.
func NewRateLimiter(cleanupInterval time.Duration) *RateLimiter {
	return &RateLimiter{limiters: cache.New(idleTTL, cleanupInterval)}
}

// Stop drops all buckets.
func (rl *RateLimiter) Stop() {
	rl.limiters.Flush()
}

// Limit returns middleware allowing perMinute requests per client with a burst
// of the same size.
func (rl *RateLimiter) Limit(perMinute int) Middleware {
	if perMinute < 1 {
		perMinute = 1
	}
	every := rate.Every(time.Minute / time.Duration(perMinute))
	retryAfter := strconv.Itoa(int(math.Ceil(60 / float64(perMinute))))
	class := strconv.Itoa(perMinute) + "|"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lim := rl.limiter(class+clientIP(r), every, perMinute)
			if !lim.Allow() {
				w.Header().Set("Retry-After", retryAfter)
				writeLimitError(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) limiter(key string, every rate.Limit, burst int) *rate.Limiter {
	if v, ok := rl.limiters.Get(key); ok {
		lim := v.(*rate.Limiter)
		rl.limiters.SetDefault(key, lim)
		return lim
	}
	lim := rate.NewLimiter(every, burst)
	if err := rl.limiters.Add(key, lim, cache.DefaultExpiration); err != nil {
		// Lost the race; use the stored limiter.
		if v, ok := rl.limiters.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return lim
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeLimitError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	w.Write([]byte(`{"error":"rate limit exceeded"}`)) //nolint:errcheck
}
