package service

import "time"

// Test hooks for clock-dependent behavior.

func (s *ListingService) SetClock(now func() time.Time) { s.now = now }

func (s *VisitorService) SetClock(now func() time.Time) { s.now = now }

func (tb *TokenBucket) SetClock(now func() time.Time) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.now = now
}

func (tb *TokenBucket) ForgetIdle() int { return tb.forgetIdle() }
