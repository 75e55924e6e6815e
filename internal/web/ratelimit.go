package web

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	appmw "github.com/JonMunkholm/contactfinder/internal/web/middleware"
)

var errRateLimited = errors.New("rate limit exceeded")

// limit describes a token bucket.
type limit struct {
	rate  rate.Limit
	burst int
}

// perMinute spreads n requests per minute with a burst of n.
func perMinute(n int) limit {
	if n <= 0 {
		return limit{rate: rate.Inf, burst: 1}
	}
	return limit{rate: rate.Limit(float64(n) / 60), burst: n}
}

// rateLimiter keeps one token bucket per client IP.
type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   limit
	idleTTL time.Duration
	now     func() time.Time
}

type client struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newRateLimiter(l limit) *rateLimiter {
	return &rateLimiter{
		clients: make(map[string]*client),
		limit:   l,
		idleTTL: 10 * time.Minute,
		now:     time.Now,
	}
}

func (rl *rateLimiter) get(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[ip]
	if !ok {
		c = &client{lim: rate.NewLimiter(rl.limit.rate, rl.limit.burst)}
		rl.clients[ip] = c
	}
	c.lastSeen = rl.now()
	return c.lim
}

// cleanup forgets clients idle for longer than idleTTL.
func (rl *rateLimiter) cleanup() {
	cutoff := rl.now().Add(-rl.idleTTL)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

// startJanitor runs cleanup every minute until ctx is done.
func (rl *rateLimiter) startJanitor(ctx context.Context) {
	t := time.NewTicker(time.Minute)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				rl.cleanup()
			}
		}
	}()
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := rl.get(appmw.ClientIP(r)).ReserveN(rl.now(), 1)
		if delay := res.DelayFrom(rl.now()); !res.OK() || delay > 0 {
			res.Cancel()
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(delay)))
			respondError(w, r, errRateLimited, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func retryAfterSeconds(d time.Duration) int {
	if d <= 0 {
		return 1
	}
	return int(math.Ceil(d.Seconds()))
}
