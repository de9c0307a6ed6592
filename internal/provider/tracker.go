package provider

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limits describes a backend's throughput and pricing characteristics. Zero
// values mean "unlimited" or "free".
type Limits struct {
	RequestsPerMinute int
	RequestsPerDay    int
	CostPer1MInput    float64
	CostPer1MOutput   float64
}

// Tracker enforces a provider's request limits and accumulates usage
// statistics. One tracker is shared by all workers using a provider, so all
// counters are mutex-guarded.
type Tracker struct {
	mu     sync.Mutex
	name   string
	model  string
	limits Limits

	limiter *rate.Limiter

	requests       int
	dailyRequests  int
	dailyResetTime time.Time
	estimatedCost  float64
}

// NewTracker creates a tracker for the named provider and model.
func NewTracker(name, model string, limits Limits) *Tracker {
	t := &Tracker{
		name:           name,
		model:          model,
		limits:         limits,
		dailyResetTime: nextMidnight(time.Now()),
	}
	if limits.RequestsPerMinute > 0 {
		t.limiter = rate.NewLimiter(rate.Limit(float64(limits.RequestsPerMinute)/60.0), 1)
	}
	return t
}

// Acquire blocks until the rate gate admits one request, checking the daily
// budget first. It returns ErrDailyLimit (wrapped) when the daily request
// budget is exhausted.
func (t *Tracker) Acquire(ctx context.Context) error {
	t.mu.Lock()
	t.resetDailyIfNeeded()
	if t.limits.RequestsPerDay > 0 && t.dailyRequests >= t.limits.RequestsPerDay {
		t.mu.Unlock()
		return fmt.Errorf("%s: %w (%d requests)", t.name, ErrDailyLimit, t.limits.RequestsPerDay)
	}
	t.mu.Unlock()

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	t.mu.Lock()
	t.requests++
	t.dailyRequests++
	t.mu.Unlock()
	return nil
}

// TrackCost estimates and accumulates the cost of one request using the
// rough 4-characters-per-token approximation.
func (t *Tracker) TrackCost(input, output string) {
	if t.limits.CostPer1MInput == 0 && t.limits.CostPer1MOutput == 0 {
		return
	}

	inputTokens := float64(len(input)) / 4
	outputTokens := float64(len(output)) / 4
	cost := inputTokens*t.limits.CostPer1MInput/1_000_000 + outputTokens*t.limits.CostPer1MOutput/1_000_000

	t.mu.Lock()
	t.estimatedCost += cost
	total := t.estimatedCost
	t.mu.Unlock()

	log.Printf("[%s] Request cost: $%.4f (total: $%.4f)", t.name, cost, total)
}

// Stats returns a snapshot of the accumulated counters.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetDailyIfNeeded()
	return Stats{
		Provider:      t.name,
		Model:         t.model,
		Requests:      t.requests,
		DailyRequests: t.dailyRequests,
		EstimatedCost: t.estimatedCost,
	}
}

// resetDailyIfNeeded rolls the daily counter over at local midnight. Caller
// must hold t.mu.
func (t *Tracker) resetDailyIfNeeded() {
	now := time.Now()
	if now.After(t.dailyResetTime) {
		t.dailyRequests = 0
		t.dailyResetTime = nextMidnight(now)
		log.Printf("[%s] Daily request counter reset, next reset: %s", t.name, t.dailyResetTime.Format("2006-01-02 15:04:05"))
	}
}

func nextMidnight(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
}
