package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/ladderfit/internal/logging"
	"github.com/mmr-tortoise/ladderfit/internal/model"
)

// Config is the full ladderfit configuration.
type Config struct {
	Server  ServerConfig   `yaml:"server" json:"server"`
	Catalog CatalogConfig  `yaml:"catalog" json:"catalog"`
	Ladder  LadderConfig   `yaml:"ladder" json:"ladder"`
	Sizing  SizingConfig   `yaml:"sizing" json:"sizing"`
	Log     logging.Config `yaml:"log" json:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `yaml:"addr" json:"addr"`

	// ShutdownTimeoutSeconds bounds graceful shutdown.
	ShutdownTimeoutSeconds int `yaml:"shutdown_timeout_seconds" json:"shutdown_timeout_seconds"`
}

// CatalogConfig locates the cable catalog CSV.
type CatalogConfig struct {
	Path string `yaml:"path" json:"path"`
}

// LadderConfig holds the standard ladder width catalog in mm.
type LadderConfig struct {
	Widths model.LadderWidths `yaml:"widths" json:"widths"`
}

// SizingConfig holds the defaults applied to computations that do not choose
// their own layout or spacing.
type SizingConfig struct {
	SpacingMM float64 `yaml:"spacing_mm" json:"spacing_mm"`
	Layout    string  `yaml:"layout" json:"layout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:                   ":8080",
			ShutdownTimeoutSeconds: 30,
		},
		Catalog: CatalogConfig{
			Path: "cable_db.csv",
		},
		Ladder: LadderConfig{
			Widths: model.DefaultLadderWidths(),
		},
		Sizing: SizingConfig{
			SpacingMM: 10,
			Layout:    model.LayoutFlat.String(),
		},
		Log: logging.Config{
			Level:  "info",
			Format: "console",
		},
	}
}

// ErrUnsupportedFormat is returned for config files whose extension is not
// one of .yaml, .yml, .json or .jsonc.
var ErrUnsupportedFormat = errors.New("unsupported config file format")

// Load reads the configuration file at path on top of Default and validates
// the result.
//
// A relative catalog path in the file is resolved against the directory of
// the config file, so a config and its CSV can be moved together.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	// Unmarshalling into a populated struct replaces slices wholesale, so an
	// explicit widths list in the file fully replaces the default catalog.
	if err := decode(path, data, cfg); err != nil {
		return nil, err
	}

	if cfg.Catalog.Path != "" && !filepath.IsAbs(cfg.Catalog.Path) {
		cfg.Catalog.Path = filepath.Join(filepath.Dir(path), cfg.Catalog.Path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// RoutesFile is the document read by LoadRoutes.
type RoutesFile struct {
	Routes []model.RouteRequest `json:"routes" yaml:"routes"`
}

// LoadRoutes reads a batch of cable routes from a YAML or JSONC file. The
// requests are returned as written; defaults are applied when they are
// resolved against a catalog.
func LoadRoutes(path string) ([]model.RouteRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read routes file: %w", err)
	}
	var doc RoutesFile
	if err := decode(path, data, &doc); err != nil {
		return nil, err
	}
	return doc.Routes, nil
}

// decode unmarshals data into v using the format implied by the extension
// of path.
func decode(path string, data []byte, v interface{}) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), v); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("%w: %q (valid: .yaml, .yml, .json, .jsonc)", ErrUnsupportedFormat, ext)
	}
	return nil
}

// Validate checks the configuration for values the server cannot run with.
// An unknown sizing layout is not an error; it resolves to flat like any
// other unrecognized layout.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr must not be empty"))
	}
	if c.Server.ShutdownTimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout_seconds %d must not be negative", c.Server.ShutdownTimeoutSeconds))
	}
	if c.Catalog.Path == "" {
		errs = append(errs, errors.New("catalog.path must not be empty"))
	}
	if err := c.Ladder.Widths.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("ladder.widths: %w", err))
	}
	if !model.IsFinite(c.Sizing.SpacingMM) || c.Sizing.SpacingMM < 0 {
		errs = append(errs, fmt.Errorf("sizing.spacing_mm: %w: %g", model.ErrInvalidSpacing, c.Sizing.SpacingMM))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}

	return errors.Join(errs...)
}

// DefaultLayout returns the configured default layout, resolved.
func (c *Config) DefaultLayout() model.Layout {
	layout, _ := model.ResolveLayout(c.Sizing.Layout)
	return layout
}

// Marshal renders the configuration as YAML. It is used by the
// "config" command to show the effective settings.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
