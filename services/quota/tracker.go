// Package quota tracks per-agent daily and monthly article counters with
// lazy reset boundaries and all-or-nothing reservations.
package quota

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agentpress/control-plane/models"
)

// Reason identifies which ceiling rejected a reservation.
type Reason string

const (
	ReasonDailyExhausted   Reason = "daily_quota_exhausted"
	ReasonMonthlyExhausted Reason = "monthly_quota_exhausted"
)

// Reservation is the outcome of CheckAndReserve. RemainingDaily and
// RemainingMonthly are -1 when the corresponding ceiling is unlimited.
type Reservation struct {
	Allowed          bool
	RemainingDaily   int
	RemainingMonthly int
	Reason           Reason
}

// counter holds one agent's quota state. Counters are created on first access
// with zeroed counts and are reset lazily: any read or write that observes a
// passed reset boundary first zeroes the count and advances the boundary.
type counter struct {
	mu             sync.Mutex
	daily          int
	dailyResetAt   time.Time
	monthly        int
	monthlyResetAt time.Time
}

// Tracker maintains per-agent quota counters. The check-then-increment in
// CheckAndReserve runs under a per-agent lock so two concurrent reservations
// cannot both consume the last unit of quota.
type Tracker struct {
	mu       sync.Mutex
	counters map[uuid.UUID]*counter
	logger   *zap.Logger
}

// NewTracker creates a new Tracker instance
func NewTracker(logger *zap.Logger) *Tracker {
	return &Tracker{
		counters: make(map[uuid.UUID]*counter),
		logger:   logger,
	}
}

// CheckAndReserve reserves one article against both ceilings as a single
// logical transaction. If either configured ceiling would be exceeded the
// call mutates nothing; the daily ceiling is checked first. A limit of 0 is
// unlimited and never rejects.
func (t *Tracker) CheckAndReserve(agentID uuid.UUID, limits models.QuotaLimits, now time.Time) Reservation {
	c := t.counter(agentID)
	c.mu.Lock()
	defer c.mu.Unlock()

	loc := quotaLocation(limits)
	c.lazyReset(now, loc)

	daily := limits.Daily()
	monthly := limits.Monthly()

	if daily.Reached(c.daily) {
		t.logger.Debug("daily quota exhausted",
			zap.String("agent_id", agentID.String()),
			zap.Int("used", c.daily))
		return Reservation{
			Allowed:          false,
			RemainingDaily:   daily.Remaining(c.daily),
			RemainingMonthly: monthly.Remaining(c.monthly),
			Reason:           ReasonDailyExhausted,
		}
	}
	if monthly.Reached(c.monthly) {
		t.logger.Debug("monthly quota exhausted",
			zap.String("agent_id", agentID.String()),
			zap.Int("used", c.monthly))
		return Reservation{
			Allowed:          false,
			RemainingDaily:   daily.Remaining(c.daily),
			RemainingMonthly: monthly.Remaining(c.monthly),
			Reason:           ReasonMonthlyExhausted,
		}
	}

	c.daily++
	c.monthly++

	return Reservation{
		Allowed:          true,
		RemainingDaily:   daily.Remaining(c.daily),
		RemainingMonthly: monthly.Remaining(c.monthly),
	}
}

// Release undoes one reservation after a later evaluation stage rejected the
// action. It must be called at most once per reservation, by the same logical
// request that made it.
func (t *Tracker) Release(agentID uuid.UUID) {
	c := t.counter(agentID)
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.daily > 0 {
		c.daily--
	}
	if c.monthly > 0 {
		c.monthly--
	}
}

// Remaining answers the remaining-quota query without reserving. Lazy resets
// still apply before reading.
func (t *Tracker) Remaining(agentID uuid.UUID, limits models.QuotaLimits, now time.Time) (daily, monthly int) {
	c := t.counter(agentID)
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lazyReset(now, quotaLocation(limits))
	return limits.Daily().Remaining(c.daily), limits.Monthly().Remaining(c.monthly)
}

// counter returns the agent's counter, creating it on first access.
func (t *Tracker) counter(agentID uuid.UUID) *counter {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, ok := t.counters[agentID]
	if !ok {
		c = &counter{}
		t.counters[agentID] = c
	}
	return c
}

// lazyReset zeroes any counter whose reset boundary has passed and advances
// the boundary past now. A zero boundary marks a freshly created counter.
// Caller holds c.mu.
func (c *counter) lazyReset(now time.Time, loc *time.Location) {
	local := now.In(loc)

	if c.dailyResetAt.IsZero() {
		c.dailyResetAt = nextMidnight(local)
	} else if !now.Before(c.dailyResetAt) {
		c.daily = 0
		c.dailyResetAt = nextMidnight(local)
	}

	if c.monthlyResetAt.IsZero() {
		c.monthlyResetAt = nextMonthStart(local)
	} else if !now.Before(c.monthlyResetAt) {
		c.monthly = 0
		c.monthlyResetAt = nextMonthStart(local)
	}
}

// quotaLocation resolves the timezone the daily boundary is anchored to: the
// working-hours timezone when one is configured, otherwise UTC. An
// unresolvable name falls back to UTC here; the working-hours gate has
// already failed closed on it earlier in the decision order.
func quotaLocation(limits models.QuotaLimits) *time.Location {
	if limits.WorkingHours == nil || limits.WorkingHours.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(limits.WorkingHours.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func nextMidnight(local time.Time) time.Time {
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, local.Location())
}

func nextMonthStart(local time.Time) time.Time {
	return time.Date(local.Year(), local.Month()+1, 1, 0, 0, 0, 0, local.Location())
}
