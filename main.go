package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"elevedit/internal/config"
	"elevedit/internal/monitoring"
	"elevedit/internal/service"
	"elevedit/internal/store"
	"elevedit/internal/timeutil"
	"elevedit/internal/tui"
)

const usage = `usage:
  elevedit [file.gpx]   edit the elevation profile of a GPX file
  elevedit login        connect a Strava account for activity import
  elevedit logout       forget the stored Strava tokens`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	ctx := context.Background()

	if len(args) > 1 || (len(args) == 1 && (args[0] == "-h" || args[0] == "--help")) {
		fmt.Println(usage)
		return nil
	}

	// Load configuration
	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		if err := config.CreateExample(); err != nil {
			return fmt.Errorf("creating example config: %w", err)
		}
		configDir, _ := config.GetConfigDir()
		fmt.Printf("Created an example config at %s/config.json\n", configDir)
		defaults := config.DefaultConfig()
		cfg = &defaults
	} else if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		configDir, _ := config.GetConfigDir()
		fmt.Printf("Config validation failed: %v\n\n", err)
		fmt.Printf("Please edit the config file at:\n  %s/config.json\n", configDir)
		return nil
	}

	// Open database
	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if len(args) == 1 {
		switch args[0] {
		case "login":
			return login(ctx, db, cfg)
		case "logout":
			if err := db.DeleteAuth(); err != nil {
				return fmt.Errorf("removing stored tokens: %w", err)
			}
			fmt.Println("Strava tokens removed.")
			return nil
		}
	}

	closeLog, err := setupLogging()
	if err != nil {
		return err
	}
	defer closeLog()

	// Create services
	tracks := service.NewTrackService(db, timeutil.RealClock{})

	var importer *service.ImportService
	stravaClient, importErr := service.NewStravaClient(cfg, db)
	if importErr == nil {
		exportDir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		importer = service.NewImportService(stravaClient, tracks, exportDir)
	}

	// Launch TUI
	app := tui.NewApp(*cfg, tracks, importer, importErr)
	if len(args) == 1 {
		app.OpenOnStart(args[0])
	}
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}

// setupLogging sends log output to ~/.elevedit/debug.log when ELEVEDIT_DEBUG
// is set. Otherwise logs are dropped since they would corrupt the TUI.
func setupLogging() (func(), error) {
	if os.Getenv("ELEVEDIT_DEBUG") == "" {
		log.SetOutput(io.Discard)
		monitoring.SetLogger(nil)
		return func() {}, nil
	}

	configDir, err := config.GetConfigDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}
	f, err := tea.LogToFile(filepath.Join(configDir, "debug.log"), "elevedit")
	if err != nil {
		return nil, fmt.Errorf("opening debug log: %w", err)
	}
	monitoring.SetLogger(log.Printf)
	return func() { f.Close() }, nil
}

func login(ctx context.Context, db *store.Store, cfg *config.Config) error {
	if err := cfg.ValidateStrava(); err != nil {
		configDir, _ := config.GetConfigDir()
		fmt.Printf("%v\n\nPlease edit the config file at:\n  %s/config.json\n", err, configDir)
		return nil
	}

	result, err := service.Login(ctx, cfg, db, func(authURL string) {
		fmt.Println("Open this URL in your browser to authorize elevedit:")
		fmt.Println()
		fmt.Println("  " + authURL)
		fmt.Println()
		fmt.Println("Waiting for authorization...")
	})
	if err != nil {
		return fmt.Errorf("authentication: %w", err)
	}

	fmt.Println()
	fmt.Printf("Successfully authenticated as athlete %d!\n", result.AthleteID)
	return nil
}
