package ratelimit

import (
    "sync"
    "time"

    "golang.org/x/time/rate"
)

type bucket struct {
    lim  *rate.Limiter
    seen time.Time
}

// Limiter keeps one token bucket per client key.
type Limiter struct {
    mu    sync.Mutex
    m     map[string]*bucket
    rps   rate.Limit
    burst int
    idle  time.Duration
}

// New creates a per-key limiter refilling rps tokens per second up to burst.
func New(rps float64, burst int) *Limiter {
    if burst < 1 {
        burst = 1
    }
    return &Limiter{
        m:     make(map[string]*bucket),
        rps:   rate.Limit(rps),
        burst: burst,
        idle:  10 * time.Minute,
    }
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string) bool {
    now := time.Now()
    l.mu.Lock()
    b, ok := l.m[key]
    if !ok {
        b = &bucket{lim: rate.NewLimiter(l.rps, l.burst)}
        l.m[key] = b
    }
    b.seen = now
    l.evict(now)
    l.mu.Unlock()
    return b.lim.AllowN(now, 1)
}

// evict drops buckets idle for longer than l.idle. Caller holds l.mu.
func (l *Limiter) evict(now time.Time) {
    if len(l.m) < 1024 {
        return
    }
    for k, b := range l.m {
        if now.Sub(b.seen) > l.idle {
            delete(l.m, k)
        }
    }
}
