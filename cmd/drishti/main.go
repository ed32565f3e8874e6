package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/ayusman/drishti/internal/analysis"
	"github.com/ayusman/drishti/internal/blink"
	"github.com/ayusman/drishti/internal/detector"
	"github.com/ayusman/drishti/internal/server"
	"github.com/ayusman/drishti/internal/session"
	"github.com/ayusman/drishti/internal/store"
	"github.com/ayusman/drishti/internal/track"
)

func main() {
	fmt.Println("Drishti - Facial Analysis Service")

	// Optional .env in the working directory
	if err := godotenv.Load(); err == nil {
		fmt.Println("Loaded configuration from .env")
	}

	// Initialize the store
	dbPath := os.Getenv("DRISHTI_DB")
	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to get home directory: %v", err)
		}

		dbDir := filepath.Join(homeDir, ".drishti")
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			log.Fatalf("Failed to create data directory: %v", err)
		}
		dbPath = filepath.Join(dbDir, "drishti.db")
	}

	st, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	// Apply the active tuning profile, if any
	trackConfig := track.DefaultConfig()
	if profile, err := st.Profiles().Active(); err == nil {
		trackConfig = profileTrackConfig(profile)
		fmt.Printf("Using tuning profile: %s\n", profile.Name)
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Fatalf("Failed to load active profile: %v", err)
	}

	// Prefer the MediaPipe detector; fall back to the mock so the API
	// surface stays usable on machines without the Python service.
	var det detector.Detector
	mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig())
	if err != nil {
		log.Printf("MediaPipe detector unavailable (%v), using mock detector", err)
		det = detector.NewMockDetector()
	} else {
		det = mp
	}
	defer det.Close()

	registry := session.NewRegistry(trackConfig)
	analyzer := analysis.New(det, registry)

	// Find web directory
	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	// Configure and start server
	cfg := server.Config{
		StaticDir: webDir,
		Store:     st,
		Analyzer:  analyzer,
	}

	srv := server.New(cfg)

	addr := os.Getenv("DRISHTI_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	fmt.Printf("Starting server on %s\n", addr)
	if err := srv.ListenAndServe(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// profileTrackConfig maps a stored tuning profile onto the tracker and
// blink configuration applied to new sessions.
func profileTrackConfig(p *store.Profile) track.Config {
	cfg := track.DefaultConfig()
	cfg.MatchDistanceFrac = p.MatchDistanceFrac
	cfg.EvictAfterMissed = p.EvictAfterMissed
	cfg.Blink = blink.Config{
		CloseBelow:      p.EARCloseThreshold,
		OpenAbove:       p.EAROpenThreshold,
		MinClosedFrames: p.MinClosedFrames,
	}
	return cfg
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.drishti/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	// Check relative paths from current working directory
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".drishti", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
