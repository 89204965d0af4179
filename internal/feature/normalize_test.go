package feature

import (
	"errors"
	"testing"

	"github.com/liaweb/lia-engine/internal/detector"
)

func TestNormalize_SingleHand(t *testing.T) {
	sign := detector.SignALandmarks()
	hands := Landmarks([]detector.HandLandmarks{sign})

	frame, err := Normalize(hands, 640, 480)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if len(frame.Features) != FeatureLength {
		t.Errorf("expected %d features, got %d", FeatureLength, len(frame.Features))
	}

	if frame.HandCount != 1 {
		t.Errorf("expected hand count 1, got %d", frame.HandCount)
	}

	// The fixture is already normalized, so the first landmark should
	// pass through unchanged.
	wrist := sign.Points[detector.Wrist]
	if frame.Features[0] != wrist.X || frame.Features[1] != wrist.Y || frame.Features[2] != wrist.Z {
		t.Errorf("expected wrist (%f, %f, %f), got (%f, %f, %f)",
			wrist.X, wrist.Y, wrist.Z,
			frame.Features[0], frame.Features[1], frame.Features[2])
	}

	// The second hand slot should be all zeros.
	for i := handSlotLength; i < FeatureLength; i++ {
		if frame.Features[i] != 0 {
			t.Fatalf("expected zero at index %d for absent second hand, got %f", i, frame.Features[i])
		}
	}
}

func TestNormalize_NoHands(t *testing.T) {
	frame, err := Normalize(nil, 640, 480)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if frame.HandCount != 0 {
		t.Errorf("expected hand count 0, got %d", frame.HandCount)
	}

	if len(frame.Features) != FeatureLength {
		t.Errorf("expected %d features, got %d", FeatureLength, len(frame.Features))
	}

	for i, f := range frame.Features {
		if f != 0 {
			t.Fatalf("expected all-zero features for no hands, got %f at index %d", f, i)
		}
	}
}

func TestNormalize_PixelCoordinates(t *testing.T) {
	// A hand in pixel coordinates must be divided by the video
	// dimensions: x=320 in a 640-wide frame becomes 0.5.
	pixel := detector.PixelSignALandmarks(640, 480)
	hands := Landmarks([]detector.HandLandmarks{pixel})

	frame, err := Normalize(hands, 640, 480)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	wrist := pixel.Points[detector.Wrist]
	wantX := wrist.X / 640
	wantY := wrist.Y / 480

	if !almostEqual(frame.Features[0], wantX) {
		t.Errorf("expected wrist x %f, got %f", wantX, frame.Features[0])
	}
	if !almostEqual(frame.Features[1], wantY) {
		t.Errorf("expected wrist y %f, got %f", wantY, frame.Features[1])
	}

	// Z is relative depth and must never be rescaled.
	if frame.Features[2] != wrist.Z {
		t.Errorf("expected z unchanged at %f, got %f", wrist.Z, frame.Features[2])
	}

	// Every x and y should land in [0, 1].
	for i := 0; i < handSlotLength; i += 3 {
		if frame.Features[i] < 0 || frame.Features[i] > 1 {
			t.Errorf("x at index %d out of range: %f", i, frame.Features[i])
		}
		if frame.Features[i+1] < 0 || frame.Features[i+1] > 1 {
			t.Errorf("y at index %d out of range: %f", i+1, frame.Features[i+1])
		}
	}
}

func TestNormalize_NormalizedPassthrough(t *testing.T) {
	// Coordinates already in [0,1] must not be divided again.
	sign := detector.SignBLandmarks()
	hands := Landmarks([]detector.HandLandmarks{sign})

	frame, err := Normalize(hands, 1280, 720)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	for i, p := range sign.Points {
		if frame.Features[i*3] != p.X {
			t.Fatalf("landmark %d x rescaled: want %f got %f", i, p.X, frame.Features[i*3])
		}
	}
}

func TestNormalize_TwoHands(t *testing.T) {
	a := detector.SignALandmarks()
	b := detector.SignBLandmarks()
	hands := Landmarks([]detector.HandLandmarks{a, b})

	frame, err := Normalize(hands, 640, 480)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if frame.HandCount != 2 {
		t.Errorf("expected hand count 2, got %d", frame.HandCount)
	}

	// The second slot should carry the B hand, starting with its wrist.
	wrist := b.Points[detector.Wrist]
	if frame.Features[handSlotLength] != wrist.X {
		t.Errorf("expected second slot wrist x %f, got %f", wrist.X, frame.Features[handSlotLength])
	}
}

func TestNormalize_MoreThanTwoHandsIgnored(t *testing.T) {
	a := detector.SignALandmarks()
	hands := Landmarks([]detector.HandLandmarks{a, a, a})

	frame, err := Normalize(hands, 640, 480)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if frame.HandCount != 2 {
		t.Errorf("expected hand count capped at 2, got %d", frame.HandCount)
	}
	if len(frame.Features) != FeatureLength {
		t.Errorf("expected %d features, got %d", FeatureLength, len(frame.Features))
	}
}

func TestNormalize_MalformedHand(t *testing.T) {
	// A hand with the wrong number of landmarks is treated as missing.
	short := Hand{{X: 0.5, Y: 0.5}}
	frame, err := Normalize([]Hand{short}, 640, 480)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if frame.HandCount != 0 {
		t.Errorf("expected malformed hand to be dropped, got hand count %d", frame.HandCount)
	}
}

func TestNormalize_InvalidDimensions(t *testing.T) {
	sign := detector.SignALandmarks()
	hands := Landmarks([]detector.HandLandmarks{sign})

	_, err := Normalize(hands, 0, 480)
	if !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("expected ErrInvalidDimensions for zero width, got %v", err)
	}

	_, err = Normalize(hands, 640, -1)
	if !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("expected ErrInvalidDimensions for negative height, got %v", err)
	}
}

func almostEqual(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-9
}
