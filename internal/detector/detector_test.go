package detector

import (
	"errors"
	"testing"
)

func TestMockDetector(t *testing.T) {
	mock := NewMockDetector()

	// No hands configured: empty result, no error.
	hands, err := mock.Detect(nil)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(hands) != 0 {
		t.Errorf("expected no hands, got %d", len(hands))
	}

	mock.SetHands([]HandLandmarks{SignALandmarks()})
	hands, err = mock.Detect(nil)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(hands) != 1 {
		t.Fatalf("expected 1 hand, got %d", len(hands))
	}
	if hands[0].Handedness != "Right" {
		t.Errorf("expected Right hand, got %q", hands[0].Handedness)
	}

	wantErr := errors.New("detector offline")
	mock.SetError(wantErr)
	if _, err := mock.Detect(nil); !errors.Is(err, wantErr) {
		t.Errorf("expected configured error, got %v", err)
	}

	if err := mock.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestSignFixtures(t *testing.T) {
	// Fixtures feed the pipeline tests; they must be plausibly
	// normalized MediaPipe output.
	for name, fixture := range map[string]HandLandmarks{
		"A": SignALandmarks(),
		"B": SignBLandmarks(),
	} {
		if fixture.Score <= 0 || fixture.Score > 1 {
			t.Errorf("sign %s: score out of range: %f", name, fixture.Score)
		}
		for i, p := range fixture.Points {
			if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
				t.Errorf("sign %s: landmark %d outside [0,1]: (%f, %f)", name, i, p.X, p.Y)
			}
		}
	}
}

func TestPixelSignALandmarks(t *testing.T) {
	normalized := SignALandmarks()
	pixel := PixelSignALandmarks(640, 480)

	for i := range pixel.Points {
		wantX := normalized.Points[i].X * 640
		wantY := normalized.Points[i].Y * 480
		if pixel.Points[i].X != wantX || pixel.Points[i].Y != wantY {
			t.Fatalf("landmark %d: got (%f, %f), want (%f, %f)",
				i, pixel.Points[i].X, pixel.Points[i].Y, wantX, wantY)
		}
		// Z stays relative.
		if pixel.Points[i].Z != normalized.Points[i].Z {
			t.Fatalf("landmark %d: z rescaled", i)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MaxHands != MaxHands {
		t.Errorf("expected max hands %d, got %d", MaxHands, cfg.MaxHands)
	}
	if cfg.MinConfidence != 0.7 {
		t.Errorf("expected min confidence 0.7, got %f", cfg.MinConfidence)
	}
	if cfg.MinTrackingConf != 0.5 {
		t.Errorf("expected min tracking confidence 0.5, got %f", cfg.MinTrackingConf)
	}
}
