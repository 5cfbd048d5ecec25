package middleware

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterIdle = 30 * time.Minute

// KeyFunc picks the bucket a request is counted against.
type KeyFunc func(r *http.Request) string

// RateLimiter keeps one token bucket per key. Buckets idle for longer than
// limiterIdle are dropped on the next sweep.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	every   rate.Limit
	burst   int
	now     func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows burst requests at once, refilled evenly over window.
func NewRateLimiter(burst int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		every:   rate.Every(window / time.Duration(burst)),
		burst:   burst,
		now:     time.Now,
	}
}

// Reserve takes a token for key. When none is left it returns false and how
// long until the next one.
func (rl *RateLimiter) Reserve(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rl.every, rl.burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now

	if b.limiter.AllowN(now, 1) {
		return true, 0
	}
	r := b.limiter.ReserveN(now, 1)
	wait := r.DelayFrom(now)
	r.CancelAt(now)
	return false, wait
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-limiterIdle)
	for key, b := range rl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(rl.buckets, key)
		}
	}
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(limiterIdle / 2)
	defer ticker.Stop()
	for range ticker.C {
		rl.sweep()
	}
}

// RateLimit answers 429 with Retry-After once a key has used up its burst.
func RateLimit(burst int, window time.Duration, key KeyFunc) func(http.HandlerFunc) http.HandlerFunc {
	limiter := NewRateLimiter(burst, window)
	go limiter.sweepLoop()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			ok, wait := limiter.Reserve(k)
			if ok {
				next(w, r)
				return
			}

			slog.Warn("rate limit exceeded", "key", k, "path", r.URL.Path, "retry_after", wait)
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			if strings.HasPrefix(r.URL.Path, "/api/") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "too many requests"})
				return
			}
			http.Error(w, "Too many requests. Please try again later.", http.StatusTooManyRequests)
		}
	}
}

// RateLimitAuth: 5 sign-in attempts per 15 minutes per IP.
func RateLimitAuth() func(http.HandlerFunc) http.HandlerFunc {
	return RateLimit(5, 15*time.Minute, ClientIP)
}

// RateLimitSync: 60 extension pushes per minute per session token, or per
// IP for requests without one.
func RateLimitSync() func(http.HandlerFunc) http.HandlerFunc {
	return RateLimit(60, time.Minute, func(r *http.Request) string {
		token := r.Header.Get(SessionTokenHeader)
		if token == "" {
			return "ip:" + ClientIP(r)
		}
		if len(token) > 16 {
			token = token[:16]
		}
		return "session:" + token
	})
}

// ClientIP prefers proxy headers over RemoteAddr.
func ClientIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return strings.TrimSpace(xri)
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
