// Package combo tracks consecutive-success streaks and computes the
// star reward for each success.
package combo

import (
	"sync"
	"time"
)

// Combo defaults. A streak decays when no success lands within Timeout;
// the decay is wall-clock based because frame delivery is not guaranteed.
const (
	DefaultTimeout  = 2500 * time.Millisecond
	DefaultMaxCount = 50

	baseStars = 3
	capStars  = 12
)

// Tracker maintains a consecutive-success streak with time-based decay.
//
// Each success re-arms a single cancellable timer (cancel-and-replace,
// guarded by a generation counter so a stale timer can never fire after
// the state has moved on). When the timer expires the streak breaks and
// the final count is reported through the OnBroken callback.
type Tracker struct {
	mu          sync.Mutex
	timeout     time.Duration
	maxCount    int
	count       int
	lastSuccess time.Time
	timer       *time.Timer
	generation  uint64
	onSuccess   func(count, stars int)
	onBroken    func(finalCount int)
}

// NewTracker creates a Tracker with default timeout and cap.
func NewTracker() *Tracker {
	return &Tracker{
		timeout:  DefaultTimeout,
		maxCount: DefaultMaxCount,
	}
}

// Configure overrides the decay timeout and streak cap. Non-positive
// values leave the corresponding setting unchanged.
func (t *Tracker) Configure(timeout time.Duration, maxCount int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if timeout > 0 {
		t.timeout = timeout
	}
	if maxCount > 0 {
		t.maxCount = maxCount
	}
}

// OnSuccess registers a callback invoked after every success with the
// new streak count and the stars awarded.
func (t *Tracker) OnSuccess(fn func(count, stars int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSuccess = fn
}

// OnBroken registers a callback invoked when the streak lapses or is
// explicitly broken, carrying the final count.
func (t *Tracker) OnBroken(fn func(finalCount int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onBroken = fn
}

// Success records one qualifying success: the streak grows (up to the
// cap), the decay timer is re-armed, and the stars for the new count are
// returned.
func (t *Tracker) Success() (count, stars int) {
	t.mu.Lock()

	if t.count < t.maxCount {
		t.count++
	}
	t.lastSuccess = time.Now()

	t.generation++
	gen := t.generation
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.timeout, func() {
		t.expire(gen)
	})

	count = t.count
	stars = Stars(count)
	fn := t.onSuccess
	t.mu.Unlock()

	if fn != nil {
		fn(count, stars)
	}
	return count, stars
}

// expire fires when the decay timer lapses. A stale timer (superseded by
// a later success, break or reset) is ignored via the generation check.
func (t *Tracker) expire(gen uint64) {
	t.mu.Lock()
	if gen != t.generation || t.count == 0 {
		t.mu.Unlock()
		return
	}
	final := t.count
	fn := t.onBroken
	t.clearLocked()
	t.mu.Unlock()

	if fn != nil {
		fn(final)
	}
}

// BreakCombo ends the streak synchronously, reporting the final count
// through OnBroken. Breaking an idle tracker is a no-op.
func (t *Tracker) BreakCombo() {
	t.mu.Lock()
	if t.count == 0 {
		t.mu.Unlock()
		return
	}
	final := t.count
	fn := t.onBroken
	t.clearLocked()
	t.mu.Unlock()

	if fn != nil {
		fn(final)
	}
}

// Reset clears the streak without emitting a break event. Used when a
// whole practice session is abandoned rather than the streak lapsing.
// Calling it twice is a no-op the second time.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clearLocked()
}

// Count returns the current streak length.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// Stars returns the reward for a streak of n: three stars plus one for
// every three consecutive successes, capped at twelve.
func Stars(n int) int {
	s := baseStars + n/3
	if s > capStars {
		return capStars
	}
	return s
}

func (t *Tracker) clearLocked() {
	t.generation++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.count = 0
	t.lastSuccess = time.Time{}
}
