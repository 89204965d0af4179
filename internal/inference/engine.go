package inference

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/liaweb/lia-engine/internal/feature"
)

// Result is one classifier prediction over a full window.
// A Result is produced fresh per inference call and never mutated after.
type Result struct {
	Predictions   []float64     `json:"predictions"`
	ClassIndex    int           `json:"classIndex"`
	Class         string        `json:"class"`
	Confidence    float64       `json:"confidence"`
	InferenceTime time.Duration `json:"inferenceTimeMs"`
}

// Runtime is the narrow capability interface the engine needs from a
// concrete tensor runtime. It isolates the rest of the pipeline from
// whatever actually executes the model.
type Runtime interface {
	// Predict runs the model on a [1][timesteps][features] window and
	// returns the output probability vector.
	Predict(window [][][]float64) ([]float64, error)

	// Close releases native resources. Must be safe to call repeatedly.
	Close() error
}

// RuntimeFactory builds the concrete runtime for a weights file.
type RuntimeFactory func(modelPath string, meta *ModelMetadata) (Runtime, error)

// Mock confidence range served in degraded mode. Keeps downstream
// consumers exercised without a trained model.
const (
	mockConfidenceMin  = 0.5
	mockConfidenceSpan = 0.4
)

// Engine owns the classifier lifecycle: load, warmup, predict, dispose.
type Engine struct {
	mu       sync.Mutex
	factory  RuntimeFactory
	meta     *ModelMetadata
	runtime  Runtime
	ready    bool
	degraded bool
	loadErr  error
	rng      *rand.Rand
}

// NewEngine creates an Engine that runs real models through the Python
// subprocess runtime.
func NewEngine() *Engine {
	return NewEngineWithRuntime(NewSubprocessRuntime)
}

// NewEngineWithRuntime creates an Engine with a custom runtime factory.
// Tests use this to plug in deterministic runtimes.
func NewEngineWithRuntime(factory RuntimeFactory) *Engine {
	return &Engine{
		factory: factory,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// LoadModel loads the metadata sidecar and then the model weights.
//
// Metadata always comes first: it carries the class labels, confidence
// threshold and declared shapes the rest of the pipeline configures
// itself from. A metadata failure is a hard error. A weights or warmup
// failure is stored and the engine enters degraded mode instead, so
// practice sessions stay usable offline with mock predictions.
func (e *Engine) LoadModel(modelPath, metadataPath string) error {
	meta, err := LoadMetadata(metadataPath)
	if err != nil {
		e.mu.Lock()
		e.loadErr = err
		e.mu.Unlock()
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Reloading replaces the runtime; shut the old one down first so a
	// sidecar process is never orphaned.
	if e.runtime != nil {
		e.runtime.Close()
		e.runtime = nil
	}

	e.meta = meta

	if meta.IsMock() {
		log.Printf("model metadata marked %q, serving mock predictions", meta.Status)
		e.degraded = true
		e.ready = true
		return nil
	}

	runtime, err := e.factory(modelPath, meta)
	if err != nil {
		e.loadErr = fmt.Errorf("load model: %w", err)
		log.Printf("model load failed (%v), entering degraded mode", err)
		e.degraded = true
		e.ready = true
		return nil
	}

	// Warmup pass on an all-zero window so the first real inference
	// is not penalized by lazy initialization.
	if _, err := runtime.Predict(zeroWindow(meta.WindowSize())); err != nil {
		runtime.Close()
		e.loadErr = fmt.Errorf("warmup: %w", err)
		log.Printf("model warmup failed (%v), entering degraded mode", err)
		e.degraded = true
		e.ready = true
		return nil
	}

	e.runtime = runtime
	e.degraded = false
	e.loadErr = nil
	e.ready = true
	log.Printf("model %s ready: %d classes, window %d", meta.ModelVersion, len(meta.Classes), meta.WindowSize())

	return nil
}

// RunInference classifies one window and returns nil when the engine is
// not ready or the runtime fails. Failures are logged, never propagated:
// this runs inside a periodic tick loop that must keep ticking.
func (e *Engine) RunInference(window [][][]float64) *Result {
	e.mu.Lock()
	meta := e.meta
	runtime := e.runtime
	ready := e.ready
	degraded := e.degraded
	e.mu.Unlock()

	if !ready || meta == nil {
		return nil
	}

	if degraded || runtime == nil {
		return e.mockResult(meta)
	}

	start := time.Now()
	predictions, err := runtime.Predict(window)
	elapsed := time.Since(start)
	if err != nil {
		log.Printf("inference failed: %v", err)
		return nil
	}
	if len(predictions) == 0 {
		log.Printf("inference returned empty predictions")
		return nil
	}

	idx := argmax(predictions)

	return &Result{
		Predictions:   predictions,
		ClassIndex:    idx,
		Class:         meta.ClassLabel(idx),
		Confidence:    predictions[idx],
		InferenceTime: elapsed,
	}
}

// Ready reports whether the engine can serve predictions (real or mock).
func (e *Engine) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ready
}

// Degraded reports whether the engine is serving mock predictions.
func (e *Engine) Degraded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.degraded
}

// Metadata returns the loaded model metadata, or nil before LoadModel.
func (e *Engine) Metadata() *ModelMetadata {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.meta
}

// LoadError returns the stored load failure, if any.
func (e *Engine) LoadError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadErr
}

// Dispose releases the runtime and flips the engine to not ready.
// Safe to call multiple times.
func (e *Engine) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.runtime != nil {
		if err := e.runtime.Close(); err != nil {
			log.Printf("error closing model runtime: %v", err)
		}
		e.runtime = nil
	}
	e.ready = false
	e.degraded = false
}

// mockResult fabricates a plausible prediction: a random class with
// confidence drawn from [0.5, 0.9).
func (e *Engine) mockResult(meta *ModelMetadata) *Result {
	start := time.Now()

	e.mu.Lock()
	idx := e.rng.Intn(len(meta.Classes))
	confidence := mockConfidenceMin + e.rng.Float64()*mockConfidenceSpan
	e.mu.Unlock()

	predictions := make([]float64, len(meta.Classes))
	rest := (1.0 - confidence) / float64(len(predictions))
	for i := range predictions {
		predictions[i] = rest
	}
	predictions[idx] = confidence

	return &Result{
		Predictions:   predictions,
		ClassIndex:    idx,
		Class:         meta.ClassLabel(idx),
		Confidence:    confidence,
		InferenceTime: time.Since(start),
	}
}

// argmax returns the index of the largest value, resolving ties to the
// lowest index encountered first.
func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}

// zeroWindow builds an all-zero [1][size][FeatureLength] warmup window.
func zeroWindow(size int) [][][]float64 {
	window := make([][]float64, size)
	for i := range window {
		window[i] = make([]float64, feature.FeatureLength)
	}
	return [][][]float64{window}
}
