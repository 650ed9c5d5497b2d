package common

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	// pinned limiters were configured explicitly and survive Sweep
	pinned bool
}

// RateLimiterStore hands out one token bucket per client address. Buckets
// created on first sight use the default rate and are dropped by Sweep once
// the client has been idle; buckets set through SetLimiter are kept.
type RateLimiterStore struct {
	clients      map[string]*clientLimiter
	mu           sync.Mutex
	defaultRate  rate.Limit
	defaultBurst int
	now          func() time.Time
}

func NewRateLimiterStore(defaultRate rate.Limit, defaultBurst int) *RateLimiterStore {
	return &RateLimiterStore{
		clients:      make(map[string]*clientLimiter),
		defaultRate:  defaultRate,
		defaultBurst: defaultBurst,
		now:          time.Now,
	}
}

func (s *RateLimiterStore) GetLimiter(clientAddr string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.clients[clientAddr]
	if !exists {
		c = &clientLimiter{limiter: rate.NewLimiter(s.defaultRate, s.defaultBurst)}
		s.clients[clientAddr] = c
	}
	c.lastSeen = s.now()
	return c.limiter
}

func (s *RateLimiterStore) SetLimiter(clientAddr string, clientRate rate.Limit, clientBurst int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[clientAddr] = &clientLimiter{
		limiter:  rate.NewLimiter(clientRate, clientBurst),
		lastSeen: s.now(),
		pinned:   true,
	}
}

// Allow is nil-safe: a store that was never configured lets everything through.
func (s *RateLimiterStore) Allow(clientAddr string) bool {
	if s == nil {
		return true
	}
	return s.GetLimiter(clientAddr).Allow()
}

// Len returns the number of clients currently tracked.
func (s *RateLimiterStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Sweep forgets default limiters of clients not seen for longer than idle
// and returns how many were dropped. A returning client starts again with a
// full bucket.
func (s *RateLimiterStore) Sweep(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-idle)
	dropped := 0
	for addr, c := range s.clients {
		if !c.pinned && c.lastSeen.Before(cutoff) {
			delete(s.clients, addr)
			dropped++
		}
	}
	return dropped
}

// SweepEvery runs Sweep on every tick of period until ctx is done.
func (s *RateLimiterStore) SweepEvery(ctx context.Context, period, idle time.Duration) {
	logger := GetLoggerWith("rate_limiter")
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if dropped := s.Sweep(idle); dropped > 0 {
				logger.Debug("Dropped idle client limiters", zap.Int("dropped", dropped), zap.Int("tracked", s.Len()))
			}
		}
	}
}
