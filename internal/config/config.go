package config

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/reconcile"
	"github.com/vango-dev/vtree/pkg/vtest"
)

// FileNames are the configuration files Load looks for, in order.
var FileNames = []string{"vtree.yaml", "vtree.yml", "vtree.json"}

const (
	DefaultSeed         = 1
	DefaultPairs        = 1000
	DefaultMutationRate = 0.3
	DefaultProfile      = "default"
	DefaultNamespace    = "vtree"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
)

// Config is the vtree command configuration.
type Config struct {
	Bench   BenchConfig   `json:"bench" yaml:"bench"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
	Log     LogConfig     `json:"log" yaml:"log"`
	History HistoryConfig `json:"history" yaml:"history"`

	configPath string
}

// BenchConfig controls the random tree pairs the bench command diffs.
type BenchConfig struct {
	// Seed makes a run reproducible.
	Seed uint64 `json:"seed" yaml:"seed"`

	// Pairs is the number of (previous, next) tree pairs.
	Pairs int `json:"pairs" yaml:"pairs"`

	// Profile names a tree shape preset: small, default, wide or deep.
	Profile string `json:"profile" yaml:"profile"`

	// Depth and Fanout override the profile when non-zero.
	Depth  int `json:"depth,omitempty" yaml:"depth,omitempty"`
	Fanout int `json:"fanout,omitempty" yaml:"fanout,omitempty"`

	// MutationRate is the probability that a parent is edited, in [0, 1].
	MutationRate float64 `json:"mutationRate" yaml:"mutation_rate"`

	// Workers bounds concurrent diffs. 0 uses GOMAXPROCS.
	Workers int `json:"workers,omitempty" yaml:"workers,omitempty"`
}

// MetricsConfig controls metric collection.
type MetricsConfig struct {
	Namespace string `json:"namespace" yaml:"namespace"`

	// Addr, if set, serves /metrics on this address while the command runs.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `json:"level" yaml:"level"`

	// Format is text or json.
	Format string `json:"format" yaml:"format"`
}

// HistoryConfig controls document frame retention.
type HistoryConfig struct {
	Capacity int `json:"capacity" yaml:"capacity"`
}

var profiles = map[string]vtest.GenOptions{
	"small":   {Depth: 2, Fanout: 3, ParentRatio: 0.3, VoidRatio: 0.3},
	"default": vtest.DefaultGenOptions(),
	"wide":    {Depth: 2, Fanout: 50, ParentRatio: 0.1, VoidRatio: 0.2},
	"deep":    {Depth: 12, Fanout: 3, ParentRatio: 0.6, VoidRatio: 0.2},
}

// Profiles returns the names of the tree shape presets.
func Profiles() []string {
	return []string{"small", "default", "wide", "deep"}
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Bench: BenchConfig{
			Seed:         DefaultSeed,
			Pairs:        DefaultPairs,
			Profile:      DefaultProfile,
			MutationRate: DefaultMutationRate,
		},
		Metrics: MetricsConfig{
			Namespace: DefaultNamespace,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		History: HistoryConfig{
			Capacity: reconcile.DefaultHistoryCapacity,
		},
	}
}

// Load reads the first of FileNames found in dir.
func Load(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New(errors.CodeConfigNotFound).
		WithDetail("No " + strings.Join(FileNames, ", ") + " found in " + dir).
		WithSuggestion("Run 'vtree config init' to write one with default values")
}

// Exists reports whether dir holds one of FileNames.
func Exists(dir string) bool {
	for _, name := range FileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// LoadFile reads configuration from path. The format follows the file
// extension: .json is JSON, anything else YAML. Unset fields keep their
// defaults and unknown fields are rejected.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.New(errors.CodeConfigNotFound).
				WithDetail("No configuration file at " + path).
				Wrap(err)
		}
		return nil, errors.New(errors.CodeConfigInvalid).Wrap(err)
	}

	cfg := New()
	if err := decode(path, data, cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.New(errors.CodeConfigInvalid).
			WithLocationFromError(path, err).
			WithSuggestion("Check that " + filepath.Base(path) + " is valid and only uses known fields").
			Wrap(err)
	}

	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	if isJSON(path) {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(cfg)
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// SaveTo writes the configuration to path, as JSON or YAML by extension.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return errors.New(errors.CodeConfigInvalid).Wrap(err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New(errors.CodeConfigInvalid).Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path the config was loaded from or saved to.
func (c *Config) Path() string {
	return c.configPath
}

func (c *Config) applyDefaults() {
	if c.Bench.Pairs == 0 {
		c.Bench.Pairs = DefaultPairs
	}
	if c.Bench.Profile == "" {
		c.Bench.Profile = DefaultProfile
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.History.Capacity == 0 {
		c.History.Capacity = reconcile.DefaultHistoryCapacity
	}
}

// Validate checks every value is in range.
func (c *Config) Validate() error {
	invalid := func(field, format string, args ...any) error {
		e := errors.New(errors.CodeConfigValue).
			Wrap(fmt.Errorf("%s %s", field, fmt.Sprintf(format, args...)))
		if c.configPath != "" {
			e.WithSuggestion("Fix " + field + " in " + c.configPath)
		}
		return e
	}

	switch {
	case c.Bench.Pairs < 0:
		return invalid("bench.pairs", "must not be negative, got %d", c.Bench.Pairs)
	case c.Bench.Depth < 0:
		return invalid("bench.depth", "must not be negative, got %d", c.Bench.Depth)
	case c.Bench.Fanout < 0:
		return invalid("bench.fanout", "must not be negative, got %d", c.Bench.Fanout)
	case c.Bench.Workers < 0:
		return invalid("bench.workers", "must not be negative, got %d", c.Bench.Workers)
	case c.Bench.MutationRate < 0 || c.Bench.MutationRate > 1:
		return invalid("bench.mutation_rate", "must be between 0 and 1, got %g", c.Bench.MutationRate)
	case c.History.Capacity < 0:
		return invalid("history.capacity", "must not be negative, got %d", c.History.Capacity)
	}
	if _, ok := profiles[c.Bench.Profile]; !ok {
		return invalid("bench.profile", "must be one of %s, got %q", strings.Join(Profiles(), ", "), c.Bench.Profile)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return invalid("log.level", "must be debug, info, warn or error, got %q", c.Log.Level)
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		return invalid("log.format", "must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// GenOptions returns the generator options for the bench profile, with
// Depth and Fanout overridden when set.
func (b BenchConfig) GenOptions() vtest.GenOptions {
	opts, ok := profiles[b.Profile]
	if !ok {
		opts = vtest.DefaultGenOptions()
	}
	if b.Depth > 0 {
		opts.Depth = b.Depth
	}
	if b.Fanout > 0 {
		opts.Fanout = b.Fanout
	}
	return opts
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(l.Level))
	return level, err
}

// NewLogger builds a logger writing to w in the configured format.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := l.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
