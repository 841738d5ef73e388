// Package config loads the venue-events YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/venue-events/internal/classify"
	"github.com/pfrederiksen/venue-events/internal/event"
	"github.com/pfrederiksen/venue-events/internal/logger"
	"github.com/pfrederiksen/venue-events/internal/normalize"
	"github.com/pfrederiksen/venue-events/internal/scraper"
	"github.com/pfrederiksen/venue-events/internal/storage"
)

// Configuration validation errors.
var (
	ErrInvalidTitleBounds        = errors.New("title.min_length cannot exceed title.max_length")
	ErrInvalidPattern            = errors.New("vocabulary pattern is not a valid regular expression")
	ErrSourceMissingName         = errors.New("source name is required")
	ErrSourceMissingURL          = errors.New("source url is required")
	ErrSourceMissingItemSelector = errors.New("source selectors.item is required")
	ErrDuplicateSource           = errors.New("source names must be unique")
	ErrInvalidLogLevel           = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidReferenceDate      = errors.New("reference_date must be formatted YYYY-MM-DD")
)

// Config represents the complete configuration.
type Config struct {
	Title         TitleConfig      `yaml:"title"`
	Vocabulary    VocabularyConfig `yaml:"vocabulary"`
	Images        ImagesConfig     `yaml:"images"`
	ReferenceDate string           `yaml:"reference_date"`
	Sources       []scraper.Source `yaml:"sources"`
	Logging       LoggingConfig    `yaml:"logging"`
	Storage       StorageConfig    `yaml:"storage"`
}

// TitleConfig bounds accepted title lengths, in runes.
type TitleConfig struct {
	MinLength int `yaml:"min_length"`
	MaxLength int `yaml:"max_length"`
}

// VocabularyConfig overrides the classifier vocabulary. A list that is set replaces the
// built-in list, or is appended to it when Extend is true.
type VocabularyConfig struct {
	Extend             bool     `yaml:"extend"`
	NavigationTerms    []string `yaml:"navigation_terms"`
	BoilerplateMarkers []string `yaml:"boilerplate_markers"`
	NavigationPatterns []string `yaml:"navigation_patterns"`
	GenericPrograms    []string `yaml:"generic_programs"`
}

// ImagesConfig overrides the placeholder image markers, with the same Extend semantics.
type ImagesConfig struct {
	Extend             bool     `yaml:"extend"`
	PlaceholderMarkers []string `yaml:"placeholder_markers"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// StorageConfig locates snapshots. RedisAddr, when set, takes precedence over DataDir.
type StorageConfig struct {
	DataDir     string `yaml:"data_dir"`
	RedisAddr   string `yaml:"redis_addr"`
	RedisPrefix string `yaml:"redis_prefix"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Title: TitleConfig{
			MinLength: classify.DefaultMinTitleLength,
			MaxLength: classify.DefaultMaxTitleLength,
		},
		Logging: LoggingConfig{Level: "info"},
		Storage: StorageConfig{
			DataDir:     storage.DefaultDataDir,
			RedisPrefix: storage.DefaultRedisPrefix,
		},
	}
}

// Load loads configuration from a YAML file. Keys missing from the file keep their
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates YAML configuration.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Title.MinLength > 0 && c.Title.MaxLength > 0 && c.Title.MinLength > c.Title.MaxLength {
		return fmt.Errorf("%w: %d > %d", ErrInvalidTitleBounds, c.Title.MinLength, c.Title.MaxLength)
	}

	for _, list := range []struct {
		name     string
		patterns []string
	}{
		{"navigation_patterns", c.Vocabulary.NavigationPatterns},
		{"generic_programs", c.Vocabulary.GenericPrograms},
	} {
		for i, p := range list.patterns {
			if _, err := regexp.Compile("(?i)" + p); err != nil {
				return fmt.Errorf("%w: vocabulary.%s[%d] %q: %v", ErrInvalidPattern, list.name, i, p, err)
			}
		}
	}

	if c.ReferenceDate != "" {
		if _, err := event.ParseISODate(c.ReferenceDate); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidReferenceDate, c.ReferenceDate)
		}
	}

	seen := make(map[string]bool, len(c.Sources))
	for i, src := range c.Sources {
		if strings.TrimSpace(src.Name) == "" {
			return fmt.Errorf("%w: sources[%d]", ErrSourceMissingName, i)
		}
		if strings.TrimSpace(src.URL) == "" {
			return fmt.Errorf("%w: sources[%d] (%s)", ErrSourceMissingURL, i, src.Name)
		}
		if strings.TrimSpace(src.Selectors.Item) == "" {
			return fmt.Errorf("%w: sources[%d] (%s)", ErrSourceMissingItemSelector, i, src.Name)
		}
		if seen[src.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateSource, src.Name)
		}
		seen[src.Name] = true
	}

	if c.Logging.Level != "" {
		if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
			return fmt.Errorf("%w, got %q", ErrInvalidLogLevel, c.Logging.Level)
		}
	}

	return nil
}

// ClassifierVocabulary returns the classifier vocabulary the configuration describes.
func (c *Config) ClassifierVocabulary() classify.Vocabulary {
	base := classify.DefaultVocabulary()
	v := c.Vocabulary
	custom := classify.Vocabulary{
		NavigationTerms:    v.NavigationTerms,
		BoilerplateMarkers: v.BoilerplateMarkers,
		NavigationPatterns: v.NavigationPatterns,
		GenericPrograms:    v.GenericPrograms,
	}

	var out classify.Vocabulary
	if v.Extend {
		out = base.Extend(custom)
	} else {
		out = base
		if v.NavigationTerms != nil {
			out.NavigationTerms = v.NavigationTerms
		}
		if v.BoilerplateMarkers != nil {
			out.BoilerplateMarkers = v.BoilerplateMarkers
		}
		if v.NavigationPatterns != nil {
			out.NavigationPatterns = v.NavigationPatterns
		}
		if v.GenericPrograms != nil {
			out.GenericPrograms = v.GenericPrograms
		}
	}

	if c.Title.MinLength > 0 {
		out.MinTitleLength = c.Title.MinLength
	}
	if c.Title.MaxLength > 0 {
		out.MaxTitleLength = c.Title.MaxLength
	}
	return out
}

// Classifier compiles the configured vocabulary.
func (c *Config) Classifier() (*classify.Classifier, error) {
	cl, err := classify.New(c.ClassifierVocabulary())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return cl, nil
}

// PlaceholderMarkers returns the image markers the configuration describes.
func (c *Config) PlaceholderMarkers() []string {
	markers := c.Images.PlaceholderMarkers
	switch {
	case markers == nil:
		return append([]string(nil), normalize.DefaultPlaceholderMarkers...)
	case c.Images.Extend:
		return append(append([]string(nil), normalize.DefaultPlaceholderMarkers...), markers...)
	default:
		return append([]string(nil), markers...)
	}
}

// Normalizer builds a normalizer with the configured placeholder markers.
func (c *Config) Normalizer() *normalize.Normalizer {
	return normalize.New(normalize.WithPlaceholderMarkers(c.PlaceholderMarkers()))
}

// Reference returns the configured reference date, or today (UTC) when none is set.
func (c *Config) Reference() (event.Date, error) {
	if c.ReferenceDate == "" {
		return event.Today(), nil
	}
	d, err := event.ParseISODate(c.ReferenceDate)
	if err != nil {
		return event.Date{}, fmt.Errorf("%w: %q", ErrInvalidReferenceDate, c.ReferenceDate)
	}
	return d, nil
}

// LogLevel returns the configured level, INFO when unset.
func (c *Config) LogLevel() logger.Level {
	level, err := logger.ParseLevel(c.Logging.Level)
	if err != nil {
		return logger.LevelInfo
	}
	return level
}
