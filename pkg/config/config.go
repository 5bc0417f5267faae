// Package config provides configuration loading and management for spectralpeaks.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"spectralpeaks/internal/models"
)

// DefaultConfigFile is used when SPECTRALPEAKS_CONFIG is not set
const DefaultConfigFile = "spectralpeaks.yaml"

// Config represents the application configuration loaded from YAML
type Config struct {
	// Input selects the images to analyse
	Input struct {
		// Dir is searched recursively for images
		Dir string `yaml:"dir"`

		// Extension filters the files to analyse (case-insensitive)
		Extension string `yaml:"extension"`
	} `yaml:"input"`

	// Crop is the region of interest applied to every image
	Crop models.CropRect `yaml:"crop"`

	// Analysis parameters
	Analysis struct {
		// Threshold is the minimum mean power a profile peak must reach
		Threshold float64 `yaml:"threshold"`
	} `yaml:"analysis"`

	// Processing parameters
	Processing struct {
		// NumCores is the number of images analysed concurrently
		NumCores int `yaml:"numCores"`

		// ContinueOnError skips unreadable images instead of aborting the run
		ContinueOnError bool `yaml:"continueOnError"`
	} `yaml:"processing"`

	// Output parameters
	Output struct {
		// File is the spreadsheet written at the end of the run (.xlsx or .csv)
		File string `yaml:"file"`

		// SheetName is the name of the results sheet
		SheetName string `yaml:"sheetName"`

		// SaveIntermediaryResults stores crops, spectra and profiles per image
		SaveIntermediaryResults bool `yaml:"saveIntermediaryResults"`

		// IntermediaryDir receives the intermediary results
		IntermediaryDir string `yaml:"intermediaryDir"`

		// Verbose enables debug logging
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Input.Extension = ".tif"

	cfg.Processing.NumCores = 1
	cfg.Processing.ContinueOnError = false

	cfg.Output.File = "results.xlsx"
	cfg.Output.SheetName = "Sheet1"
	cfg.Output.SaveIntermediaryResults = false
	cfg.Output.IntermediaryDir = "intermediary_results"
	cfg.Output.Verbose = false

	return cfg
}

// LoadEnv reads a .env file from the working directory if there is one
func LoadEnv() {
	// Missing .env is fine
	_ = godotenv.Load()
}

// PathFromEnv returns the config file named by SPECTRALPEAKS_CONFIG,
// or DefaultConfigFile.
func PathFromEnv() string {
	if path := strings.TrimSpace(os.Getenv("SPECTRALPEAKS_CONFIG")); path != "" {
		return path
	}
	return DefaultConfigFile
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

// Validate reports every problem that would stop a run
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Input.Dir) == "" {
		errs = append(errs, errors.New("input directory is required"))
	}
	if !strings.HasPrefix(c.Input.Extension, ".") || len(c.Input.Extension) < 2 {
		errs = append(errs, fmt.Errorf("extension must look like \".tif\" (got %q)", c.Input.Extension))
	}
	if c.Crop.X1 < 0 || c.Crop.Y1 < 0 || c.Crop.X2 <= c.Crop.X1 || c.Crop.Y2 <= c.Crop.Y1 {
		errs = append(errs, fmt.Errorf("crop rectangle %s is empty or negative", c.Crop))
	}
	if c.Processing.NumCores < 1 {
		errs = append(errs, fmt.Errorf("numCores must be >= 1 (got %d)", c.Processing.NumCores))
	}
	if strings.TrimSpace(c.Output.File) == "" {
		errs = append(errs, errors.New("output file is required"))
	}

	return errors.Join(errs...)
}
