// Package ratelimit bounds per-agent request volume in fixed wall-clock
// windows (minute, hour, day, all UTC-aligned) and enforces a lockout after
// any violation.
package ratelimit

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agentpress/control-plane/models"
)

// DefaultLockoutDuration is applied when no lockout is configured.
const DefaultLockoutDuration = 15 * time.Minute

// Window identifies which fixed window rejected a request.
type Window string

const (
	WindowMinute Window = "minute"
	WindowHour   Window = "hour"
	WindowDay    Window = "day"
)

// Result is the outcome of an admission check. On a fresh violation
// RetryAfter is the time until the violated window rolls over; while an agent
// is locked out it is the time until the lock clears.
type Result struct {
	Admitted       bool
	ViolatedWindow Window
	RetryAfter     time.Duration
}

// window holds one agent's counters. Each counter belongs to the fixed
// wall-clock window starting at its *Start instant; a request arriving
// exactly on a boundary counts toward the new window.
type window struct {
	mu          sync.Mutex
	minuteStart time.Time
	minuteCount int
	hourStart   time.Time
	hourCount   int
	dayStart    time.Time
	dayCount    int
	lockedUntil time.Time
}

// Limiter maintains per-agent rate windows, created on first access. The
// check-then-increment runs under a per-agent lock.
type Limiter struct {
	mu      sync.Mutex
	windows map[uuid.UUID]*window
	lockout time.Duration
	logger  *zap.Logger
}

// NewLimiter creates a new Limiter instance. A non-positive lockout falls
// back to DefaultLockoutDuration.
func NewLimiter(lockout time.Duration, logger *zap.Logger) *Limiter {
	if lockout <= 0 {
		lockout = DefaultLockoutDuration
	}
	return &Limiter{
		windows: make(map[uuid.UUID]*window),
		lockout: lockout,
		logger:  logger,
	}
}

// Admit checks the minute, hour and day ceilings in that order; the first
// ceiling violated determines the rejection. A violation locks the agent out
// for the configured duration, during which every request is rejected
// regardless of window rollovers. On success all three counters increment.
// A nil config or a ceiling of 0 imposes no bound for that window.
func (l *Limiter) Admit(agentID uuid.UUID, cfg *models.RateLimitConfig, now time.Time) Result {
	w := l.window(agentID)
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.lockedUntil.IsZero() {
		if now.Before(w.lockedUntil) {
			return Result{
				Admitted:   false,
				RetryAfter: w.lockedUntil.Sub(now),
			}
		}
		// Lock expired: clear it; expired windows reset below.
		w.lockedUntil = time.Time{}
	}

	w.roll(now)

	if cfg != nil {
		if res, ok := w.violation(cfg.RequestsPerMinute, w.minuteCount, WindowMinute, w.minuteStart.Add(time.Minute), now); ok {
			l.lock(w, agentID, now, res.ViolatedWindow)
			return res
		}
		if res, ok := w.violation(cfg.RequestsPerHour, w.hourCount, WindowHour, w.hourStart.Add(time.Hour), now); ok {
			l.lock(w, agentID, now, res.ViolatedWindow)
			return res
		}
		if res, ok := w.violation(cfg.RequestsPerDay, w.dayCount, WindowDay, w.dayStart.Add(24*time.Hour), now); ok {
			l.lock(w, agentID, now, res.ViolatedWindow)
			return res
		}
	}

	w.minuteCount++
	w.hourCount++
	w.dayCount++

	return Result{Admitted: true}
}

// LockedUntil returns the lockout expiry for an agent, or the zero time when
// the agent is not locked out.
func (l *Limiter) LockedUntil(agentID uuid.UUID) time.Time {
	w := l.window(agentID)
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lockedUntil
}

func (l *Limiter) lock(w *window, agentID uuid.UUID, now time.Time, violated Window) {
	w.lockedUntil = now.Add(l.lockout)
	l.logger.Warn("rate limit violated, agent locked out",
		zap.String("agent_id", agentID.String()),
		zap.String("window", string(violated)),
		zap.Time("locked_until", w.lockedUntil))
}

// window returns the agent's rate window, creating it on first access.
func (l *Limiter) window(agentID uuid.UUID) *window {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[agentID]
	if !ok {
		w = &window{}
		l.windows[agentID] = w
	}
	return w
}

// roll resets any counter whose fixed window has rolled over. Truncation in
// UTC aligns the windows to wall-clock boundaries and makes a boundary
// instant fall into the new window. Caller holds w.mu.
func (w *window) roll(now time.Time) {
	if start := now.Truncate(time.Minute); !start.Equal(w.minuteStart) {
		w.minuteStart = start
		w.minuteCount = 0
	}
	if start := now.Truncate(time.Hour); !start.Equal(w.hourStart) {
		w.hourStart = start
		w.hourCount = 0
	}
	if start := now.Truncate(24 * time.Hour); !start.Equal(w.dayStart) {
		w.dayStart = start
		w.dayCount = 0
	}
}

// violation reports whether admitting one more request would exceed the
// ceiling. Caller holds w.mu.
func (w *window) violation(limit, count int, win Window, resetAt, now time.Time) (Result, bool) {
	if limit <= 0 || count < limit {
		return Result{}, false
	}
	return Result{
		Admitted:       false,
		ViolatedWindow: win,
		RetryAfter:     resetAt.Sub(now),
	}, true
}
