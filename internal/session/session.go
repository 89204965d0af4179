// Package session orchestrates the real-time recognition pipeline for
// one practice session: camera frames in, stable gesture and combo
// events out.
package session

import (
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/liaweb/lia-engine/internal/capture"
	"github.com/liaweb/lia-engine/internal/combo"
	"github.com/liaweb/lia-engine/internal/detector"
	"github.com/liaweb/lia-engine/internal/feature"
	"github.com/liaweb/lia-engine/internal/inference"
	"github.com/liaweb/lia-engine/internal/stabilize"
	"github.com/liaweb/lia-engine/internal/store"
)

// InferenceInterval is how often a full window is pulled from the
// buffer and classified. It is independent of the camera frame rate.
const InferenceInterval = 100 * time.Millisecond

// EventType discriminates session events.
type EventType string

const (
	// EventGesture is a debounced gesture decision.
	EventGesture EventType = "gesture"
	// EventComboSuccess reports a grown streak and the stars awarded.
	EventComboSuccess EventType = "combo"
	// EventComboBroken reports a lapsed or broken streak.
	EventComboBroken EventType = "combo_broken"
)

// Event is what the session publishes to subscribers (the lesson UI).
// Confidence is scaled to 0-100 on this boundary.
type Event struct {
	Type       EventType `json:"type"`
	Class      string    `json:"class,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
	Expected   string    `json:"expected,omitempty"`
	Correct    bool      `json:"correct"`
	ComboCount int       `json:"comboCount,omitempty"`
	Stars      int       `json:"stars,omitempty"`
	Timestamp  int64     `json:"timestamp"`
}

// Config holds the collaborators a session is built from.
type Config struct {
	Store    *store.Store // optional; attempts are recorded when set
	Camera   capture.Camera
	Detector detector.Detector
	Engine   *inference.Engine
}

// Session owns the component graph of one practice session: frame
// buffer, inference engine, temporal stabilizer and combo tracker.
// Multiple independent sessions can coexist; nothing here is global.
type Session struct {
	config     Config
	buffer     *feature.Buffer
	stabilizer *stabilize.Stabilizer
	combo      *combo.Tracker

	mu          sync.Mutex
	expected    string
	stopCh      chan struct{}
	subscribers []func(Event)

	inFlight atomic.Bool
}

// New creates a Session wired to the given collaborators.
func New(config Config) *Session {
	s := &Session{
		config:     config,
		buffer:     feature.NewBuffer(),
		stabilizer: stabilize.NewStabilizer(),
		combo:      combo.NewTracker(),
	}

	s.combo.OnSuccess(func(count, stars int) {
		s.publish(Event{
			Type:       EventComboSuccess,
			ComboCount: count,
			Stars:      stars,
			Timestamp:  time.Now().UnixMilli(),
		})
	})
	s.combo.OnBroken(func(finalCount int) {
		s.publish(Event{
			Type:       EventComboBroken,
			ComboCount: finalCount,
			Timestamp:  time.Now().UnixMilli(),
		})
	})

	return s
}

// Subscribe registers a callback for session events. Subscribers must
// not block; slow consumers should buffer on their side.
func (s *Session) Subscribe(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// SetExpected sets the sign the learner is currently practicing.
func (s *Session) SetExpected(sign string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expected = strings.ToUpper(strings.TrimSpace(sign))
}

// Expected returns the sign currently being practiced.
func (s *Session) Expected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expected
}

// Running reports whether the pipeline loops are active.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopCh != nil
}

// Start begins the two pipeline drivers: the capture loop feeding the
// frame buffer and the inference ticker classifying full windows.
// Starting supersedes any prior run for this session.
func (s *Session) Start() error {
	s.Stop()

	// Model metadata overrides the pipeline defaults when present.
	if meta := s.config.Engine.Metadata(); meta != nil {
		s.buffer.Configure(meta.WindowSize(), meta.ResetThreshold)
		s.stabilizer.Configure(meta.MinConfidenceThreshold, 0)
	}

	if s.config.Camera != nil {
		if err := s.config.Camera.Open(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	if s.config.Camera != nil && s.config.Detector != nil {
		go s.captureLoop(stopCh)
	}
	go s.inferenceLoop(stopCh)

	log.Println("practice session started")
	return nil
}

// Stop cancels both drivers and resets every stateful component so a
// later Start begins from a clean slate. Safe to call repeatedly.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.stopCh != nil {
		close(s.stopCh)
		s.stopCh = nil
	}
	s.mu.Unlock()

	if s.config.Camera != nil {
		if err := s.config.Camera.Close(); err != nil {
			log.Printf("error closing camera: %v", err)
		}
	}

	s.buffer.Clear()
	s.stabilizer.Reset()
	s.combo.Reset()
}

// Feed pushes one external hand observation through the buffer. It is
// the manual entry point for callers that run their own detector; the
// capture loop uses it too. A buffer reset from hand loss clears the
// stabilizer in the same step so a stale gesture is never credited.
func (s *Session) Feed(hands []detector.HandLandmarks, videoWidth, videoHeight int) {
	reset, err := s.buffer.AddFrame(feature.Landmarks(hands), videoWidth, videoHeight)
	if err != nil {
		log.Printf("error buffering frame: %v", err)
		return
	}
	if reset {
		s.stabilizer.Reset()
	}
}

// captureLoop is pipeline driver 1: it reads camera frames at the
// camera's FPS, runs hand detection and feeds the buffer.
func (s *Session) captureLoop(stopCh <-chan struct{}) {
	fps := s.config.Camera.FPS()
	if fps <= 0 {
		fps = capture.DefaultFPS
	}

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			frame, err := s.config.Camera.ReadFrame()
			if err != nil {
				log.Printf("error reading frame: %v", err)
				continue
			}

			hands, err := s.config.Detector.Detect(frame)
			width, height := frame.Cols(), frame.Rows()
			frame.Close()

			if err != nil {
				log.Printf("error detecting hands: %v", err)
				continue
			}

			s.Feed(hands, width, height)
		}
	}
}

// inferenceLoop is pipeline driver 2: a fixed-interval ticker that
// classifies the current window when the buffer is full. A tick is
// dropped when the previous inference is still in flight, so at most
// one inference runs at a time.
func (s *Session) inferenceLoop(stopCh <-chan struct{}) {
	ticker := time.NewTicker(InferenceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !s.inFlight.CompareAndSwap(false, true) {
				continue
			}
			s.inferTick()
			s.inFlight.Store(false)
		}
	}
}

// inferTick runs one classify-stabilize-reward step.
func (s *Session) inferTick() {
	window := s.buffer.InferenceData()
	if window == nil {
		return
	}

	result := s.config.Engine.RunInference(window)

	stable := s.stabilizer.Process(result)
	if stable == nil {
		return
	}

	expected := s.Expected()
	correct := expected != "" && strings.EqualFold(stable.Class, expected)

	s.publish(Event{
		Type:       EventGesture,
		Class:      stable.Class,
		Confidence: stable.Confidence * 100,
		Expected:   expected,
		Correct:    correct,
		Timestamp:  stable.Timestamp.UnixMilli(),
	})

	count, stars := 0, 0
	if correct {
		count, stars = s.combo.Success()
	}

	if s.config.Store != nil && expected != "" {
		attempt := &store.Attempt{
			ID:         uuid.NewString(),
			Expected:   expected,
			Recognized: stable.Class,
			Confidence: stable.Confidence,
			Correct:    correct,
			ComboCount: count,
			Stars:      stars,
		}
		if err := s.config.Store.Attempts().Create(attempt); err != nil {
			log.Printf("error recording attempt: %v", err)
		}
	}
}

// publish fans an event out to all subscribers.
func (s *Session) publish(event Event) {
	s.mu.Lock()
	subscribers := make([]func(Event), len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.Unlock()

	for _, fn := range subscribers {
		fn(event)
	}
}

// Combo exposes the combo tracker (status endpoints, tests).
func (s *Session) Combo() *combo.Tracker {
	return s.combo
}

// Buffer exposes the frame buffer (status endpoints, tests).
func (s *Session) Buffer() *feature.Buffer {
	return s.buffer
}

// Stabilizer exposes the temporal stabilizer (status endpoints, tests).
func (s *Session) Stabilizer() *stabilize.Stabilizer {
	return s.stabilizer
}
