package feature

import (
	"sync"

	"github.com/liaweb/lia-engine/internal/capture"
)

// Buffer defaults. The classifier was trained on 30-frame windows, and
// the recognizer discards its window after 10 consecutive frames with
// no hands so a stale gesture is never credited after the hand left.
const (
	DefaultBufferSize          = 30
	DefaultMaxConsecutiveNulls = 10
)

// Buffer maintains a bounded FIFO window of normalized feature vectors.
// It owns the window exclusively; consumers get copies via InferenceData.
type Buffer struct {
	mu          sync.Mutex
	size        int
	maxNulls    int
	frames      [][]float64
	nulls       int
	videoWidth  int
	videoHeight int
}

// NewBuffer creates a Buffer with default window size and null tolerance.
// Video dimensions start at the capture defaults and are updated from
// whatever AddFrame observes.
func NewBuffer() *Buffer {
	return &Buffer{
		size:        DefaultBufferSize,
		maxNulls:    DefaultMaxConsecutiveNulls,
		videoWidth:  capture.DefaultWidth,
		videoHeight: capture.DefaultHeight,
	}
}

// Configure updates the window size and null tolerance. Non-positive
// values leave the corresponding setting unchanged. Shrinking the window
// evicts the oldest frames.
func (b *Buffer) Configure(size, maxNulls int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if size > 0 {
		b.size = size
		if len(b.frames) > b.size {
			b.frames = b.frames[len(b.frames)-b.size:]
		}
	}
	if maxNulls > 0 {
		b.maxNulls = maxNulls
	}
}

// AddFrame normalizes the observation and appends it to the window.
//
// Dimensions are sticky: positive width/height update the last known
// values, while non-positive ones are ignored rather than rejected,
// because this path runs on every camera frame and must never take the
// pipeline down.
//
// A frame with no valid hand is never pushed; it only advances the
// consecutive-null counter. When that counter exceeds the configured
// tolerance the whole window is discarded and reset=true is returned so
// the caller can clear downstream state (debounce progress, last
// gesture) in the same step.
func (b *Buffer) AddFrame(hands []Hand, videoWidth, videoHeight int) (reset bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if videoWidth > 0 && videoHeight > 0 {
		b.videoWidth = videoWidth
		b.videoHeight = videoHeight
	}

	frame, err := Normalize(hands, b.videoWidth, b.videoHeight)
	if err != nil {
		return false, err
	}

	if frame.HandCount == 0 {
		b.nulls++
		if b.nulls > b.maxNulls {
			b.clearLocked()
			return true, nil
		}
		return false, nil
	}

	b.nulls = 0
	b.frames = append(b.frames, frame.Features)
	if len(b.frames) > b.size {
		// FIFO eviction
		b.frames = b.frames[1:]
	}

	return false, nil
}

// IsReady reports whether the window holds a full buffer of frames.
func (b *Buffer) IsReady() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.frames) == b.size
}

// FrameCount returns the number of frames currently buffered.
func (b *Buffer) FrameCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.frames)
}

// ConsecutiveNulls returns the current run of frames without hands.
func (b *Buffer) ConsecutiveNulls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nulls
}

// InferenceData returns a batch-of-one copy of the window, shaped
// [1][size][FeatureLength], or nil if the buffer is not ready. The copy
// is deep so the caller cannot corrupt the internal window.
func (b *Buffer) InferenceData() [][][]float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.frames) != b.size {
		return nil
	}

	window := make([][]float64, len(b.frames))
	for i, f := range b.frames {
		window[i] = make([]float64, len(f))
		copy(window[i], f)
	}

	return [][][]float64{window}
}

// Clear discards the window and resets the null counter.
// Calling it on an empty buffer is a no-op.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearLocked()
}

func (b *Buffer) clearLocked() {
	b.frames = nil
	b.nulls = 0
}
