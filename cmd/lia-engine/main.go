package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/liaweb/lia-engine/internal/capture"
	"github.com/liaweb/lia-engine/internal/detector"
	"github.com/liaweb/lia-engine/internal/inference"
	"github.com/liaweb/lia-engine/internal/server"
	"github.com/liaweb/lia-engine/internal/session"
	"github.com/liaweb/lia-engine/internal/store"
)

func main() {
	fmt.Println("LIA Engine - Libras Sign Recognition")

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dataDir := filepath.Join(homeDir, ".lia")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(filepath.Join(dataDir, "lia.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	// Model artifacts live next to the binary or under ~/.lia/models.
	modelDir := findModelDir()
	engine := inference.NewEngine()
	if modelDir != "" {
		err := engine.LoadModel(
			filepath.Join(modelDir, "modelo_gestos.h5"),
			filepath.Join(modelDir, "metadata.json"),
		)
		if err != nil {
			log.Printf("Model unavailable (%v), recognition disabled until loaded", err)
		}
	} else {
		log.Println("No model directory found, recognition disabled")
	}
	defer engine.Dispose()

	// MediaPipe hand detection, with a mock fallback for development.
	var det detector.Detector
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		det = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		det = detector.NewMockDetector()
	}

	camera := capture.NewCamera(0)

	sess := session.New(session.Config{
		Store:    st,
		Camera:   camera,
		Detector: det,
		Engine:   engine,
	})
	defer sess.Stop()

	srv := server.New(server.Config{
		StaticDir: findWebDir(),
		Store:     st,
		Camera:    camera,
		Engine:    engine,
		Session:   sess,
	})

	addr := ":8080"
	fmt.Printf("Starting server on %s\n", addr)
	if err := srv.ListenAndServe(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// findModelDir searches for the model artifact directory in common
// locations: "models", "../models", and ~/.lia/models.
func findModelDir() string {
	for _, p := range []string{"models", "../models"} {
		if hasMetadata(p) {
			if absPath, err := filepath.Abs(p); err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(homeDir, ".lia", "models")
	if hasMetadata(p) {
		return p
	}
	return ""
}

func hasMetadata(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, "metadata.json"))
	return err == nil && !info.IsDir()
}

// findWebDir searches for the web client directory in common locations.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	for _, p := range []string{"web", "../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if absPath, err := filepath.Abs(p); err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(homeDir, ".lia", "web")
	if info, err := os.Stat(p); err == nil && info.IsDir() {
		return p
	}
	return ""
}
