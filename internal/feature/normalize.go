// Package feature converts raw hand landmarks into the fixed-length
// feature vectors consumed by the gesture classifier and buffers them
// into sliding windows for inference.
package feature

import (
	"errors"
	"fmt"

	"github.com/liaweb/lia-engine/internal/detector"
)

const (
	// FeatureLength is the classifier feature vector size:
	// 2 hands x 21 landmarks x 3 channels (x, y, z).
	FeatureLength = detector.MaxHands * detector.NumLandmarks * 3

	// handSlotLength is the number of features contributed by one hand slot.
	handSlotLength = detector.NumLandmarks * 3

	// normalizedBound is the cutoff used to decide whether a hand's
	// coordinates are already normalized to [0,1]. The small slack
	// tolerates landmarks slightly outside the frame.
	normalizedBound = 1.01
)

// ErrInvalidDimensions is returned when Normalize is called with
// non-positive video dimensions. This indicates a caller bug, not a
// transient condition.
var ErrInvalidDimensions = errors.New("video dimensions must be positive")

// Hand is one observed hand as an ordered landmark sequence.
// A well-formed observation has exactly detector.NumLandmarks points;
// anything else is treated as a missing hand.
type Hand []detector.Point3D

// Frame is a single normalized feature vector plus the number of valid
// hands that produced it. Features always has length FeatureLength; a
// missing or malformed hand leaves its 63-element slot zeroed.
type Frame struct {
	Features  []float64
	HandCount int
}

// Landmarks converts detector output into the Hand slices Normalize expects.
func Landmarks(hands []detector.HandLandmarks) []Hand {
	out := make([]Hand, len(hands))
	for i := range hands {
		out[i] = hands[i].Points[:]
	}
	return out
}

// Normalize converts up to two detected hands into a classifier feature
// vector. Pixel coordinates are divided by the video dimensions; hands
// whose coordinates are already in [0,1] pass through unchanged. The z
// channel is relative depth and is never rescaled.
//
// The feature layout must match the offline training pipeline exactly:
// hand-major, landmark-major, channel-minor. Any deviation silently
// degrades model accuracy without raising an error at inference time,
// which is why this lives in one place and is tested against fixtures.
func Normalize(hands []Hand, videoWidth, videoHeight int) (Frame, error) {
	if videoWidth <= 0 || videoHeight <= 0 {
		return Frame{}, fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, videoWidth, videoHeight)
	}

	features := make([]float64, FeatureLength)
	handCount := 0

	for slot := 0; slot < detector.MaxHands; slot++ {
		if slot >= len(hands) {
			continue
		}
		hand := hands[slot]
		if len(hand) != detector.NumLandmarks {
			// Malformed observation: the slot stays zeroed.
			continue
		}
		handCount++

		scaled := isNormalized(hand)
		base := slot * handSlotLength
		for i, p := range hand {
			x, y := p.X, p.Y
			if !scaled {
				x /= float64(videoWidth)
				y /= float64(videoHeight)
			}
			features[base+i*3] = x
			features[base+i*3+1] = y
			features[base+i*3+2] = p.Z
		}
	}

	return Frame{Features: features, HandCount: handCount}, nil
}

// isNormalized reports whether every landmark of the hand already has
// x and y within the normalized range. The decision is made per hand,
// never per landmark, so a hand is scaled consistently.
func isNormalized(hand Hand) bool {
	for _, p := range hand {
		if p.X > normalizedBound || p.Y > normalizedBound {
			return false
		}
	}
	return true
}
