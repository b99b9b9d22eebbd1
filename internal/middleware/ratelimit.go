// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// KeyFunc picks the bucket a request is counted against.
type KeyFunc func(r *http.Request) string

// ByRemoteAddr keys requests by client address. Forwarding headers are not
// read here: chi's RealIP has already resolved RemoteAddr when a trusted
// proxy sits in front.
func ByRemoteAddr(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// BySessionUser keys requests by the signed-in user. Requests without a
// session fall back to the client address.
func BySessionUser(r *http.Request) string {
	if sess := SessionFromCtx(r.Context()); sess != nil && sess.UserID != uuid.Nil {
		return "user:" + sess.UserID.String()
	}
	return "addr:" + ByRemoteAddr(r)
}

// limiterInfo holds a bucket and the last time it was used.
type limiterInfo struct {
	limiter      *rate.Limiter
	lastAccessed time.Time
}

// RateLimiter gives every key a token bucket that allows limit requests at
// once and refills one token every window/limit.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterInfo
	every    rate.Limit
	burst    int
	refill   time.Duration
	window   time.Duration
	key      KeyFunc
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a limiter allowing limit requests per window for
// each key. A nil key uses ByRemoteAddr. It starts a goroutine that drops
// idle buckets until Stop is called.
func NewRateLimiter(limit int, window time.Duration, key KeyFunc) *RateLimiter {
	if limit < 1 {
		limit = 1
	}
	if key == nil {
		key = ByRemoteAddr
	}
	refill := window / time.Duration(limit)
	rl := &RateLimiter{
		limiters: make(map[string]*limiterInfo),
		every:    rate.Every(refill),
		burst:    limit,
		refill:   refill,
		window:   window,
		key:      key,
		stopCh:   make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(window)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				rl.cleanup(now)
			case <-rl.stopCh:
				return
			}
		}
	}()

	return rl
}

// Stop terminates the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// allowAt takes a token from key's bucket at now.
func (rl *RateLimiter) allowAt(key string, now time.Time) bool {
	rl.mu.Lock()
	info, ok := rl.limiters[key]
	if !ok {
		info = &limiterInfo{limiter: rate.NewLimiter(rl.every, rl.burst)}
		rl.limiters[key] = info
	}
	info.lastAccessed = now
	rl.mu.Unlock()

	return info.limiter.AllowN(now, 1)
}

// cleanup drops buckets idle for a full window. Such a bucket is full
// again, so recreating it later changes nothing.
func (rl *RateLimiter) cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, info := range rl.limiters {
		if now.Sub(info.lastAccessed) >= rl.window {
			delete(rl.limiters, key)
		}
	}
}

// Middleware rejects requests over the limit with 429 and a Retry-After of
// one refill interval.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	retryAfter := strconv.Itoa(max(1, int(rl.refill.Seconds())))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allowAt(rl.key(r), time.Now()) {
			w.Header().Set("Retry-After", retryAfter)
			writeError(w, http.StatusTooManyRequests, "too many requests, please slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}
