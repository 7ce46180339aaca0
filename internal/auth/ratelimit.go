package auth

import (
	"sync"
	"time"
)

// RateLimitConfig bounds failed staff token checks per client address.
// Zero fields take the DefaultRateLimitConfig value.
type RateLimitConfig struct {
	MaxAttempts     int
	WindowDuration  time.Duration
	LockoutDuration time.Duration
	SweepInterval   time.Duration
}

// DefaultRateLimitConfig allows five failures in 15 minutes, then locks the
// address out for 30.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxAttempts:     5,
		WindowDuration:  15 * time.Minute,
		LockoutDuration: 30 * time.Minute,
		SweepInterval:   5 * time.Minute,
	}
}

func (c RateLimitConfig) withDefaults() RateLimitConfig {
	def := DefaultRateLimitConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = def.MaxAttempts
	}
	if c.WindowDuration <= 0 {
		c.WindowDuration = def.WindowDuration
	}
	if c.LockoutDuration <= 0 {
		c.LockoutDuration = def.LockoutDuration
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = def.SweepInterval
	}
	return c
}

// failures is one client's fixed counting window.
type failures struct {
	count       int
	windowStart time.Time
	lockedUntil time.Time
}

func (f *failures) locked(now time.Time) bool {
	return now.Before(f.lockedUntil)
}

func (f *failures) stale(now time.Time, window time.Duration) bool {
	return now.Sub(f.windowStart) > window
}

// RateLimiter locks out client addresses after repeated failed token
// checks. A background sweep drops clients whose window and lockout have
// both passed.
type RateLimiter struct {
	cfg  RateLimitConfig
	now  func() time.Time
	mu   sync.RWMutex
	byIP map[string]*failures

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter starts the sweep goroutine. Call Stop to end it.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		cfg:  cfg.withDefaults(),
		now:  time.Now,
		byIP: make(map[string]*failures),
		stop: make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// Stop ends the sweep. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Allow reports whether ip may try a token. If not, retryAfter is when
// the lockout expires.
func (rl *RateLimiter) Allow(ip string) (allowed bool, retryAfter time.Duration) {
	now := rl.now()

	rl.mu.RLock()
	defer rl.mu.RUnlock()

	f, ok := rl.byIP[ip]
	switch {
	case !ok:
		return true, 0
	case f.locked(now):
		return false, f.lockedUntil.Sub(now)
	case f.stale(now, rl.cfg.WindowDuration), f.count < rl.cfg.MaxAttempts:
		return true, 0
	}
	return false, rl.cfg.LockoutDuration
}

// RecordFailure records a rejected token. locked reports whether ip is
// now locked out.
func (rl *RateLimiter) RecordFailure(ip string) (locked bool, retryAfter time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	f, ok := rl.byIP[ip]
	if !ok || f.stale(now, rl.cfg.WindowDuration) {
		f = &failures{windowStart: now}
		rl.byIP[ip] = f
	}

	f.count++
	if f.count < rl.cfg.MaxAttempts {
		return false, 0
	}
	f.lockedUntil = now.Add(rl.cfg.LockoutDuration)
	return true, rl.cfg.LockoutDuration
}

// RecordSuccess clears the failure record of ip.
func (rl *RateLimiter) RecordSuccess(ip string) {
	rl.mu.Lock()
	delete(rl.byIP, ip)
	rl.mu.Unlock()
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(rl.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) sweep() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, f := range rl.byIP {
		if !f.locked(now) && f.stale(now, rl.cfg.WindowDuration) {
			delete(rl.byIP, ip)
		}
	}
}
