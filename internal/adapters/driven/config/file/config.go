package file

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/repogallery/internal/backoff"
	"github.com/custodia-labs/repogallery/internal/core/domain"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = "gallery.toml"

// Duration is a time.Duration written as a string such as "15m".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the full pipeline configuration.
type Config struct {
	Organization      string               `toml:"organization"`
	NamePattern       string               `toml:"name_pattern"`
	DatasetPath       string               `toml:"dataset_path"`
	AssetDir          string               `toml:"asset_dir"`
	AssetManifestPath string               `toml:"asset_manifest_path"`
	EnvFile           string               `toml:"env_file"`
	Prompt            bool                 `toml:"prompt"`
	Workers           int                  `toml:"workers"`
	RequestsPerSecond float64              `toml:"requests_per_second"`
	MaxRateLimitWait  Duration             `toml:"max_rate_limit_wait"`
	MaxRetries        int                  `toml:"max_retries"`
	IncludeArchived   bool                 `toml:"include_archived"`
	Paths             []domain.ContentPath `toml:"paths"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Organization:      "UBC-MDS",
		NamePattern:       "DSCI-532_2026_",
		DatasetPath:       "data/repos.json",
		AssetDir:          "group_data/assets",
		AssetManifestPath: "data/assets.json",
		EnvFile:           ".env",
		Prompt:            true,
		Workers:           4,
		RequestsPerSecond: 1.2,
		MaxRateLimitWait:  Duration{15 * time.Minute},
		MaxRetries:        backoff.DefaultMaxRetries,
		IncludeArchived:   true,
		Paths:             domain.DefaultContentPaths(),
	}
}

// Load reads the config at path over the defaults. A missing file is an
// error only when required is set. Unknown keys are rejected.
func Load(path string, required bool) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.Paths = nil
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: %s: %s", domain.ErrInvalidInput, path, strict.String())
		}
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, path, err)
	}
	if cfg.Paths == nil {
		cfg.Paths = domain.DefaultContentPaths()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks every field is usable.
func (c *Config) Validate() error {
	invalid := func(field, problem string) error {
		return fmt.Errorf("%w: %s %s", domain.ErrInvalidInput, field, problem)
	}

	switch {
	case c.Organization == "":
		return invalid("organization", "is required")
	case c.DatasetPath == "":
		return invalid("dataset_path", "is required")
	case c.AssetDir == "":
		return invalid("asset_dir", "is required")
	case c.AssetManifestPath == "":
		return invalid("asset_manifest_path", "is required")
	case c.Workers < 1:
		return invalid("workers", "must be at least 1")
	case c.RequestsPerSecond < 0:
		return invalid("requests_per_second", "must not be negative")
	case c.MaxRateLimitWait.Duration <= 0:
		return invalid("max_rate_limit_wait", "must be positive")
	case c.MaxRetries < 0:
		return invalid("max_retries", "must not be negative")
	case len(c.Paths) == 0:
		return invalid("paths", "must list at least one path")
	}

	for i, p := range c.Paths {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("paths[%d]: %w", i, err)
		}
	}
	return nil
}

// RetryPolicy returns the backoff schedule for MaxRetries.
func (c *Config) RetryPolicy() backoff.Policy {
	p := backoff.Default()
	p.MaxRetries = c.MaxRetries
	return p
}
