// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all otakublog configuration.
type Config struct {
	Storage Storage `yaml:"storage"`
	UI      UI      `yaml:"ui"`
	Export  Export  `yaml:"export"`
	Log     Log     `yaml:"log"`
}

// Storage selects and configures the slot backend.
type Storage struct {
	Backend      string `yaml:"backend"`        // "file" | "sqlite" | "memory"
	Dir          string `yaml:"dir"`            // Directory holding slot files or the database
	MaxSlotBytes int64  `yaml:"max_slot_bytes"` // Per-slot size limit, 0 for none
}

// UI holds terminal interface settings.
type UI struct {
	PageSize   int    `yaml:"page_size"`   // Contacts rows per page: 5, 10 or 25
	ContentDir string `yaml:"content_dir"` // Local overrides for embedded site content
}

// Export holds resume export settings.
type Export struct {
	PDF          bool          `yaml:"pdf"`           // Try PDF generation before printing
	Browser      string        `yaml:"browser"`       // Chromium binary, empty to auto-detect
	PrintCommand string        `yaml:"print_command"` // Fallback print command, fed plain text on stdin
	OutputDir    string        `yaml:"output_dir"`
	Timeout      time.Duration `yaml:"timeout"`
}

// Log holds logging settings.
type Log struct {
	Level string `yaml:"level"` // "debug" | "info" | "warn" | "error" | "off"
	File  string `yaml:"file"`
}

// PageSizes lists the accepted contacts page sizes.
var PageSizes = []int{5, 10, 25}

var logLevels = []string{"debug", "info", "warn", "error", "off"}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Storage: Storage{
			Backend: "file",
			Dir:     ".otakublog/data",
		},
		UI: UI{
			PageSize:   5,
			ContentDir: "content",
		},
		Export: Export{
			PDF:          true,
			PrintCommand: "lp",
			OutputDir:    ".otakublog/exports",
			Timeout:      time.Minute,
		},
		Log: Log{
			Level: "info",
			File:  ".otakublog/otakublog.log",
		},
	}
}

// Load reads a single YAML config file at path and returns a Config.
// For merging multiple config sources, use LoadLayered instead.
// If the file does not exist, defaults are returned without error.
// If the file contains invalid YAML or unknown fields, an error is returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return &cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	if c.Storage.Backend == "" {
		return errors.New("config: storage.backend cannot be empty")
	}
	if c.Storage.Dir == "" && c.Storage.Backend != "memory" {
		return errors.New("config: storage.dir cannot be empty")
	}
	if c.Storage.MaxSlotBytes < 0 {
		return fmt.Errorf("config: storage.max_slot_bytes must be non-negative, got %d", c.Storage.MaxSlotBytes)
	}
	if !slices.Contains(PageSizes, c.UI.PageSize) {
		return fmt.Errorf("config: ui.page_size must be one of %v, got %d", PageSizes, c.UI.PageSize)
	}
	if c.Export.Timeout <= 0 {
		return fmt.Errorf("config: export.timeout must be positive, got %v", c.Export.Timeout)
	}
	if c.Export.OutputDir == "" {
		return errors.New("config: export.output_dir cannot be empty")
	}
	if !slices.Contains(logLevels, c.Log.Level) {
		return fmt.Errorf("config: log.level must be one of %v, got %q", logLevels, c.Log.Level)
	}
	return nil
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: OTAKUBLOG_STORAGE_BACKEND, OTAKUBLOG_DATA_DIR,
// OTAKUBLOG_LOG_LEVEL, OTAKUBLOG_BROWSER, OTAKUBLOG_EXPORT_TIMEOUT.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("OTAKUBLOG_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("OTAKUBLOG_DATA_DIR"); v != "" {
		c.Storage.Dir = v
	}
	if v := os.Getenv("OTAKUBLOG_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("OTAKUBLOG_BROWSER"); v != "" {
		c.Export.Browser = v
	}
	if v := os.Getenv("OTAKUBLOG_EXPORT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid OTAKUBLOG_EXPORT_TIMEOUT %q: %w", v, err)
		}
		c.Export.Timeout = d
	}
	return nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Storage *rawStorage `yaml:"storage"`
	UI      *rawUI      `yaml:"ui"`
	Export  *rawExport  `yaml:"export"`
	Log     *rawLog     `yaml:"log"`
}

type rawStorage struct {
	Backend      *string `yaml:"backend"`
	Dir          *string `yaml:"dir"`
	MaxSlotBytes *int64  `yaml:"max_slot_bytes"`
}

type rawUI struct {
	PageSize   *int    `yaml:"page_size"`
	ContentDir *string `yaml:"content_dir"`
}

type rawExport struct {
	PDF          *bool          `yaml:"pdf"`
	Browser      *string        `yaml:"browser"`
	PrintCommand *string        `yaml:"print_command"`
	OutputDir    *string        `yaml:"output_dir"`
	Timeout      *time.Duration `yaml:"timeout"`
}

type rawLog struct {
	Level *string `yaml:"level"`
	File  *string `yaml:"file"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if s := layer.Storage; s != nil {
		set(&c.Storage.Backend, s.Backend)
		set(&c.Storage.Dir, s.Dir)
		set(&c.Storage.MaxSlotBytes, s.MaxSlotBytes)
	}
	if u := layer.UI; u != nil {
		set(&c.UI.PageSize, u.PageSize)
		set(&c.UI.ContentDir, u.ContentDir)
	}
	if e := layer.Export; e != nil {
		set(&c.Export.PDF, e.PDF)
		set(&c.Export.Browser, e.Browser)
		set(&c.Export.PrintCommand, e.PrintCommand)
		set(&c.Export.OutputDir, e.OutputDir)
		set(&c.Export.Timeout, e.Timeout)
	}
	if l := layer.Log; l != nil {
		set(&c.Log.Level, l.Level)
		set(&c.Log.File, l.File)
	}
}
