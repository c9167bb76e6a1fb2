package config

import (
	"bytes"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/reconcile"
	"github.com/vango-dev/vtree/pkg/vtest"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Bench.Pairs != DefaultPairs {
		t.Errorf("Bench.Pairs = %d, want %d", cfg.Bench.Pairs, DefaultPairs)
	}
	if cfg.Bench.MutationRate != DefaultMutationRate {
		t.Errorf("Bench.MutationRate = %g, want %g", cfg.Bench.MutationRate, DefaultMutationRate)
	}
	if cfg.Metrics.Namespace != DefaultNamespace {
		t.Errorf("Metrics.Namespace = %q, want %q", cfg.Metrics.Namespace, DefaultNamespace)
	}
	if cfg.History.Capacity != reconcile.DefaultHistoryCapacity {
		t.Errorf("History.Capacity = %d, want %d", cfg.History.Capacity, reconcile.DefaultHistoryCapacity)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for missing config")
	} else if e := errors.FromError(err, ""); e.Code != errors.CodeConfigNotFound {
		t.Errorf("Code = %q, want %q", e.Code, errors.CodeConfigNotFound)
	}
	if Exists(dir) {
		t.Error("Exists should be false for an empty directory")
	}

	writeFile(t, dir, "vtree.yaml", `
bench:
  seed: 42
  profile: wide
  fanout: 80
  mutation_rate: 0
log:
  level: debug
  format: json
`)
	if !Exists(dir) {
		t.Error("Exists should be true once vtree.yaml is written")
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Bench.Seed != 42 {
		t.Errorf("Bench.Seed = %d, want 42", cfg.Bench.Seed)
	}
	if cfg.Bench.MutationRate != 0 {
		t.Errorf("Bench.MutationRate = %g, an explicit 0 must be kept", cfg.Bench.MutationRate)
	}
	if cfg.Bench.Pairs != DefaultPairs {
		t.Errorf("Bench.Pairs = %d, unset fields keep their default", cfg.Bench.Pairs)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Path() != filepath.Join(dir, "vtree.yaml") {
		t.Errorf("Path() = %q", cfg.Path())
	}

	opts := cfg.Bench.GenOptions()
	if opts.Fanout != 80 {
		t.Errorf("Fanout = %d, the explicit value overrides the profile", opts.Fanout)
	}
	if opts.Depth != profiles["wide"].Depth {
		t.Errorf("Depth = %d, want the wide profile's", opts.Depth)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "vtree.json", `{
  "bench": {"pairs": 10, "workers": 2},
  "metrics": {"namespace": "ui", "addr": ":9090"},
  "history": {"capacity": 5}
}`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Bench.Pairs != 10 || cfg.Bench.Workers != 2 {
		t.Errorf("Bench = %+v", cfg.Bench)
	}
	if cfg.Metrics.Namespace != "ui" || cfg.Metrics.Addr != ":9090" {
		t.Errorf("Metrics = %+v", cfg.Metrics)
	}
	if cfg.History.Capacity != 5 {
		t.Errorf("History.Capacity = %d, want 5", cfg.History.Capacity)
	}
}

func TestLoadPrefersYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "vtree.json", `{"bench": {"pairs": 1}}`)
	writeFile(t, dir, "vtree.yaml", "bench:\n  pairs: 2\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Bench.Pairs != 2 {
		t.Errorf("Bench.Pairs = %d, vtree.yaml should win", cfg.Bench.Pairs)
	}
}

func TestLoadFileEmpty(t *testing.T) {
	path := writeFile(t, t.TempDir(), "vtree.yaml", "")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("an empty file should load defaults: %v", err)
	}
	if cfg.Bench.Pairs != DefaultPairs {
		t.Errorf("Bench.Pairs = %d", cfg.Bench.Pairs)
	}
}

func TestLoadFileErrors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantCode string
		wantLine int
	}{
		{
			name:     "unknown field",
			file:     "vtree.yaml",
			content:  "bench:\n  seed: 1\n  colour: red\n",
			wantCode: errors.CodeConfigInvalid,
			wantLine: 3,
		},
		{
			name:     "malformed yaml",
			file:     "vtree.yaml",
			content:  "bench:\n  seed: [1\n",
			wantCode: errors.CodeConfigInvalid,
		},
		{
			name:     "malformed json",
			file:     "vtree.json",
			content:  `{"bench": `,
			wantCode: errors.CodeConfigInvalid,
		},
		{
			name:     "unknown json field",
			file:     "vtree.json",
			content:  `{"bench": {"colour": "red"}}`,
			wantCode: errors.CodeConfigInvalid,
		},
		{
			name:     "rate out of range",
			file:     "vtree.yaml",
			content:  "bench:\n  mutation_rate: 3\n",
			wantCode: errors.CodeConfigValue,
		},
		{
			name:     "unknown profile",
			file:     "vtree.yaml",
			content:  "bench:\n  profile: huge\n",
			wantCode: errors.CodeConfigValue,
		},
		{
			name:     "bad log level",
			file:     "vtree.yaml",
			content:  "log:\n  level: loud\n",
			wantCode: errors.CodeConfigValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.file, tt.content)

			_, err := LoadFile(path)
			if err == nil {
				t.Fatal("expected an error")
			}
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("error %v is not an *errors.Error", err)
			}
			if e.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q (%v)", e.Code, tt.wantCode, err)
			}
			if tt.wantLine > 0 && (e.Location == nil || e.Location.Line != tt.wantLine) {
				t.Errorf("Location = %v, want line %d", e.Location, tt.wantLine)
			}
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))

	if !stderrors.Is(err, os.ErrNotExist) {
		t.Errorf("error %v should wrap os.ErrNotExist", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"negative pairs", func(c *Config) { c.Bench.Pairs = -1 }, "bench.pairs"},
		{"negative depth", func(c *Config) { c.Bench.Depth = -1 }, "bench.depth"},
		{"negative fanout", func(c *Config) { c.Bench.Fanout = -1 }, "bench.fanout"},
		{"negative workers", func(c *Config) { c.Bench.Workers = -2 }, "bench.workers"},
		{"negative rate", func(c *Config) { c.Bench.MutationRate = -0.1 }, "bench.mutation_rate"},
		{"negative capacity", func(c *Config) { c.History.Capacity = -1 }, "history.capacity"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q should name %s", err, tt.field)
			}
		})
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	for _, name := range []string{"vtree.yaml", "vtree.json"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			cfg := New()
			cfg.Bench.Seed = 9
			cfg.Bench.Profile = "deep"
			cfg.Metrics.Addr = "localhost:9100"

			path := filepath.Join(dir, name)
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo error: %v", err)
			}
			if cfg.Path() != path {
				t.Errorf("Path() = %q, want %q", cfg.Path(), path)
			}

			loaded, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile error: %v", err)
			}
			if loaded.Bench != cfg.Bench || loaded.Metrics != cfg.Metrics ||
				loaded.Log != cfg.Log || loaded.History != cfg.History {
				t.Errorf("loaded %+v, saved %+v", loaded, cfg)
			}
		})
	}
}

func TestGenOptionsProfiles(t *testing.T) {
	for _, name := range Profiles() {
		b := BenchConfig{Profile: name}
		if b.GenOptions() != profiles[name] {
			t.Errorf("profile %s: GenOptions() = %+v", name, b.GenOptions())
		}
	}
	if (BenchConfig{Profile: "nope"}).GenOptions() != vtest.DefaultGenOptions() {
		t.Error("an unknown profile falls back to the default options")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", 1)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info should be filtered at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"k":1`) {
		t.Errorf("json output = %q", out)
	}

	buf.Reset()
	LogConfig{Level: "debug", Format: "text"}.NewLogger(&buf).Debug("visible")
	if !strings.Contains(buf.String(), "msg=visible") {
		t.Errorf("text output = %q", buf.String())
	}

	level, err := LogConfig{Level: "ERROR"}.SlogLevel()
	if err != nil || level != slog.LevelError {
		t.Errorf("SlogLevel() = %v, %v", level, err)
	}
}
