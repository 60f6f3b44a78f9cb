// Package config provides JSON and YAML configuration loading with optional validation.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a supported configuration encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// FormatFor picks the decoder for filename by extension. Anything that is
// not .yaml or .yml is treated as JSON.
func FormatFor(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode reads a single document in the given format from r into target and
// validates it if target implements Validator.
func Decode[T any](r io.Reader, format Format, target *T) error {
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(target); err != nil {
			return fmt.Errorf("decode yaml: %w", err)
		}
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(target); err != nil {
			return fmt.Errorf("decode json: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config format %q", format)
	}

	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}
	return nil
}

// Load loads configuration from a JSON or YAML file.
func Load[T any](filename string, target *T) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open config file %s: %w", filename, err)
	}
	defer f.Close()

	if err := Decode(f, FormatFor(filename), target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	return nil
}
