package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App        ApplicationConfig
	Archive    ArchiveConfig
	Generation GenerationConfig
	Catalog    CatalogConfig
	HTTP       HTTPConfig
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level
}

// ArchiveConfig points at the archive root. The directory must already exist.
type ArchiveConfig struct {
	Root string
}

// Validate validates the archive configuration.
func (c *ArchiveConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
	)
}

// GenerationConfig holds the blueprint location and RNG seed.
// A zero Seed draws a fresh random seed per run.
type GenerationConfig struct {
	Blueprint string
	Seed      uint64
}

// Validate validates the generation configuration.
func (c *GenerationConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Blueprint, validation.Required),
	)
}

// CatalogConfig holds the SQLite catalog location. Empty disables cataloguing
// after generation.
type CatalogConfig struct {
	Path string
}

// Enabled reports whether a catalog path is configured.
func (c *CatalogConfig) Enabled() bool {
	return c.Path != ""
}

// Validate requires a catalog path; used by commands that cannot run without one.
func (c *CatalogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ValidateGenerate checks the settings needed to generate an archive.
func (c *Config) ValidateGenerate() error {
	if err := c.Archive.Validate(); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	if err := c.Generation.Validate(); err != nil {
		return fmt.Errorf("generation: %w", err)
	}
	return nil
}

// ValidateServe checks the settings needed to browse an archive over HTTP.
func (c *Config) ValidateServe() error {
	if err := c.ValidateBrowse(); err != nil {
		return err
	}
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http: %w", err)
	}
	return nil
}

// ValidateBrowse checks the settings shared by every catalog-backed command.
func (c *Config) ValidateBrowse() error {
	if err := c.Archive.Validate(); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	if err := c.Catalog.Validate(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		HTTP: HTTPConfig{
			Port: 8080,
		},
	}
}
