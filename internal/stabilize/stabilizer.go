// Package stabilize turns noisy per-window classifier predictions into
// debounced gesture decisions. The underlying model runs roughly every
// 100ms and flickers window-to-window; without a consistency gate a
// learner would be credited or penalized on single-window flukes.
package stabilize

import (
	"sync"
	"time"

	"github.com/liaweb/lia-engine/internal/inference"
)

// Stabilization defaults. A prediction must clear the confidence gate
// and repeat for RequiredMatches consecutive windows before it becomes
// a stable gesture.
const (
	DefaultMinConfidence   = 0.85
	DefaultRequiredMatches = 5
)

// StableGesture is a debounced gesture decision.
type StableGesture struct {
	Class      string    `json:"class"`
	Confidence float64   `json:"confidence"`
	Matches    int       `json:"matches"`
	Timestamp  time.Time `json:"timestamp"`
}

// Stabilizer applies a confidence gate followed by a strict debounce:
// it tracks a candidate class and emits it once the same class has
// qualified for the required number of consecutive windows. The emitted
// gesture is then held as current until a different class completes its
// own debounce.
type Stabilizer struct {
	mu            sync.Mutex
	minConfidence float64
	required      int
	candidate     string
	matches       int
	current       *StableGesture
}

// NewStabilizer creates a Stabilizer with default thresholds.
func NewStabilizer() *Stabilizer {
	return &Stabilizer{
		minConfidence: DefaultMinConfidence,
		required:      DefaultRequiredMatches,
	}
}

// Configure overrides the confidence gate and the required consecutive
// matches. Non-positive values leave the corresponding setting unchanged.
func (s *Stabilizer) Configure(minConfidence float64, requiredMatches int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if minConfidence > 0 {
		s.minConfidence = minConfidence
	}
	if requiredMatches > 0 {
		s.required = requiredMatches
	}
}

// Process consumes one raw prediction and returns a stable gesture when
// the debounce completes, nil otherwise.
//
// A nil result or one below the confidence gate resets any in-progress
// tracking: partial debounce progress never survives a low-confidence
// window, even mid-sequence.
func (s *Stabilizer) Process(raw *inference.Result) *StableGesture {
	s.mu.Lock()
	defer s.mu.Unlock()

	if raw == nil || raw.Confidence < s.minConfidence {
		s.candidate = ""
		s.matches = 0
		return nil
	}

	if raw.Class == s.candidate {
		s.matches++
	} else {
		s.candidate = raw.Class
		s.matches = 1
	}

	if s.matches < s.required {
		return nil
	}

	// Debounce complete. Emit only on a class change so the held
	// gesture is reported exactly once.
	if s.current != nil && s.current.Class == raw.Class {
		return nil
	}

	stable := &StableGesture{
		Class:      raw.Class,
		Confidence: raw.Confidence,
		Matches:    s.matches,
		Timestamp:  time.Now(),
	}
	s.current = stable

	out := *stable
	return &out
}

// Current returns a copy of the gesture currently held stable, or nil.
func (s *Stabilizer) Current() *StableGesture {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}
	out := *s.current
	return &out
}

// Reset clears debounce progress and the held gesture together. It is
// called when the hand leaves the frame so a stale gesture is never
// credited afterwards. Calling it twice is a no-op the second time.
func (s *Stabilizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.candidate = ""
	s.matches = 0
	s.current = nil
}
