package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the application configuration
type Config struct {
	Editor  EditorConfig  `json:"editor"`
	Display DisplayConfig `json:"display"`
	Strava  StravaConfig  `json:"strava"`
}

// EditorConfig holds the starting values of the editing controls
type EditorConfig struct {
	Radius       int     `json:"radius"`
	Strength     float64 `json:"strength"`
	Threshold    float64 `json:"threshold"`
	HistoryLimit int     `json:"history_limit"`
}

// DisplayConfig holds display preferences
type DisplayConfig struct {
	DistanceUnit string `json:"distance_unit"`
}

// StravaConfig holds Strava API credentials. Only activity import needs them.
type StravaConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Editor: EditorConfig{
			Radius:       5,
			Strength:     0.5,
			Threshold:    10,
			HistoryLimit: 100,
		},
		Display: DisplayConfig{
			DistanceUnit: "km",
		},
	}
}

// Load reads the configuration from ~/.elevedit/config.json
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults fills zero values. A zero radius or strength is a valid
// choice, so only fields that cannot legitimately be zero are filled.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Editor.Threshold == 0 {
		c.Editor.Threshold = defaults.Editor.Threshold
	}
	if c.Editor.HistoryLimit == 0 {
		c.Editor.HistoryLimit = defaults.Editor.HistoryLimit
	}
	if c.Display.DistanceUnit == "" {
		c.Display.DistanceUnit = defaults.Display.DistanceUnit
	}
}

// Save writes the configuration to ~/.elevedit/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Strava = StravaConfig{
		ClientID:     "YOUR_CLIENT_ID",
		ClientSecret: "YOUR_CLIENT_SECRET",
	}

	return Save(&example)
}

// Validate checks the editor and display sections
func (c *Config) Validate() error {
	if c.Editor.Radius < 0 || c.Editor.Radius > 200 {
		return fmt.Errorf("editor.radius must be between 0 and 200, got %d", c.Editor.Radius)
	}
	if c.Editor.Strength < 0 || c.Editor.Strength > 1 {
		return fmt.Errorf("editor.strength must be between 0 and 1, got %v", c.Editor.Strength)
	}
	if c.Editor.Threshold != 0 && (c.Editor.Threshold < 1 || c.Editor.Threshold > 100) {
		return fmt.Errorf("editor.threshold must be between 1 and 100 meters, got %v", c.Editor.Threshold)
	}
	if c.Editor.HistoryLimit < 0 {
		return fmt.Errorf("editor.history_limit must not be negative, got %d", c.Editor.HistoryLimit)
	}

	if c.Display.DistanceUnit != "" && c.Display.DistanceUnit != "km" && c.Display.DistanceUnit != "mi" {
		return fmt.Errorf("display.distance_unit must be \"km\" or \"mi\", got %q", c.Display.DistanceUnit)
	}

	return nil
}

// HasStrava reports whether real Strava credentials are configured
func (c *Config) HasStrava() bool {
	return c.ValidateStrava() == nil
}

// ValidateStrava checks the credentials needed for activity import
func (c *Config) ValidateStrava() error {
	if c.Strava.ClientID == "" || c.Strava.ClientID == "YOUR_CLIENT_ID" {
		return errors.New("strava.client_id is required - get it from https://www.strava.com/settings/api")
	}
	if c.Strava.ClientSecret == "" || c.Strava.ClientSecret == "YOUR_CLIENT_SECRET" {
		return errors.New("strava.client_secret is required - get it from https://www.strava.com/settings/api")
	}
	return nil
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".elevedit"), nil
}
