package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"payneteasy-be/internal/auth"

	"golang.org/x/time/rate"
)

// Rate Limit Tiers
const (
	// Admin ajax, checkout (Strict)
	tierStrict = "strict"
	// General (Default)
	tierGeneral = "general"
	// Internal / trusted services
	tierInternal = "internal"
)

type Tier struct {
	Limit rate.Limit
	Burst int
}

type LimiterConfig struct {
	Strict   Tier
	General  Tier
	Internal Tier
	// StrictPaths get the strict tier.
	StrictPaths []string
	// InternalKey, sent as X-Service-Auth, selects the internal tier.
	InternalKey string
	// IdleTTL is how long an unused bucket is kept.
	IdleTTL time.Duration
}

func DefaultLimiterConfig() LimiterConfig {
	return LimiterConfig{
		Strict:   Tier{Limit: rate.Limit(2), Burst: 5},
		General:  Tier{Limit: rate.Limit(10), Burst: 20},
		Internal: Tier{Limit: rate.Limit(100), Burst: 200},
		IdleTTL:  3 * time.Minute,
	}
}

// visitor holds the rate limiter and the last time it was seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type RateLimiter struct {
	cfg    LimiterConfig
	strict map[string]struct{}

	mu       sync.Mutex
	visitors map[string]*visitor
}

func NewRateLimiter(cfg LimiterConfig) *RateLimiter {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 3 * time.Minute
	}
	strict := make(map[string]struct{}, len(cfg.StrictPaths))
	for _, p := range cfg.StrictPaths {
		strict[p] = struct{}{}
	}
	return &RateLimiter{
		cfg:      cfg,
		strict:   strict,
		visitors: make(map[string]*visitor),
	}
}

// getVisitor retrieves or creates a rate limiter for the given key.
func (l *RateLimiter) getVisitor(key string, t Tier) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, exists := l.visitors[key]
	if !exists {
		limiter := rate.NewLimiter(t.Limit, t.Burst)
		l.visitors[key] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

// Cleanup removes buckets idle for longer than IdleTTL every minute until ctx ends.
func (l *RateLimiter) Cleanup(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.evict(time.Now())
		}
	}
}

func (l *RateLimiter) evict(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.cfg.IdleTTL {
			delete(l.visitors, key)
		}
	}
}

// Middleware checks if the request is allowed by the rate limiter.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t, tier := l.resolveRateTier(r)

		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		// Same client gets separate quotas per tier, e.g. "ip:10.0.0.1:strict".
		key := fmt.Sprintf("ip:%s:%s", ip, tier)

		if !l.getVisitor(key, t).Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// resolveRateTier determines which rate limit policy applies to the request.
func (l *RateLimiter) resolveRateTier(r *http.Request) (Tier, string) {
	if auth.HasServiceKey(r, l.cfg.InternalKey) {
		return l.cfg.Internal, tierInternal
	}

	if _, ok := l.strict[r.URL.Path]; ok {
		return l.cfg.Strict, tierStrict
	}

	return l.cfg.General, tierGeneral
}
