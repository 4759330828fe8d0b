// Package config loads run configuration from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/oldbailey/proceedings/pkg/proceedings/internalerr"
)

// Output names the optional export artifacts of a run.
type Output struct {
	Workbook         string `yaml:"workbook"`
	SQLite           string `yaml:"sqlite"`
	OccupationCounts string `yaml:"occupation_counts"`
}

// Config represents one corpus run.
type Config struct {
	DataDir       string `yaml:"data_dir"`
	MinYear       int    `yaml:"min_year"`
	MaxYear       int    `yaml:"max_year"`
	Workers       int    `yaml:"workers"`
	OccupationCSV string `yaml:"occupation_csv"`
	Output        Output `yaml:"output"`
}

// Default returns a configuration covering the full digitized run of
// sessions with occupation tagging.
func Default() *Config {
	return &Config{
		MinYear: 1833,
		MaxYear: 1913,
		Workers: 8,
	}
}

// Load reads a YAML config file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the field ranges.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir is required", internalerr.ErrInvalidConfig)
	}
	if c.MinYear > c.MaxYear {
		return fmt.Errorf("%w: min_year %d after max_year %d",
			internalerr.ErrInvalidConfig, c.MinYear, c.MaxYear)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be positive, got %d",
			internalerr.ErrInvalidConfig, c.Workers)
	}
	return nil
}
