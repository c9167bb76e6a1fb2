package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "config error",
			code:    CodeConfigInvalid,
			wantMsg: "Invalid configuration file",
			wantCat: CategoryConfig,
		},
		{
			name:    "cli error",
			code:    CodeFlagInvalid,
			wantMsg: "Invalid flag value",
			wantCat: CategoryCLI,
		},
		{
			name:    "verify error",
			code:    CodeReplayMismatch,
			wantMsg: "Diff replay mismatch",
			wantCat: CategoryVerify,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "flag %q is negative", "--pairs")
	if err.Message != `flag "--pairs" is negative` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Error() != err.Message {
		t.Errorf("Error() = %q, want the bare message", err.Error())
	}
}

func TestErrorString(t *testing.T) {
	err := New(CodeConfigValue)
	if got, want := err.Error(), "E121: Invalid configuration value"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err.Wrap(stderrors.New("pairs must be positive"))
	if got, want := err.Error(), "E121: Invalid configuration value: pairs must be positive"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestWrapAndFromError(t *testing.T) {
	if FromError(nil, CodeConfigInvalid) != nil {
		t.Error("FromError(nil, ...) should return nil")
	}

	e := New(CodeConfigInvalid)
	if FromError(e, CodeFlagInvalid) != e {
		t.Error("FromError should return an *Error as-is")
	}

	wrapped := stderrors.Join(stderrors.New("other"), e)
	if FromError(wrapped, CodeFlagInvalid) != e {
		t.Error("FromError should find a wrapped *Error")
	}

	result := FromError(fs.ErrNotExist, CodeConfigNotFound)
	if !stderrors.Is(result, fs.ErrNotExist) {
		t.Error("errors.Is should see through the wrapper")
	}
	if result.Code != CodeConfigNotFound {
		t.Errorf("Code = %q, want %q", result.Code, CodeConfigNotFound)
	}
}

func TestLocationString(t *testing.T) {
	tests := []struct {
		name string
		loc  *Location
		want string
	}{
		{name: "nil location", loc: nil, want: ""},
		{name: "with column", loc: &Location{File: "vtree.yaml", Line: 10, Column: 5}, want: "vtree.yaml:10:5"},
		{name: "without column", loc: &Location{File: "vtree.yaml", Line: 10}, want: "vtree.yaml:10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.loc.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vtree.yaml")
	content := "bench:\n  seed: 1\n  pairs: 100\n  mutation_rate: 3\n  workers: 4\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWithLocation(t *testing.T) {
	path := writeConfig(t)

	err := New(CodeConfigValue).WithLocation(path, 4, 0)

	if err.Location == nil || err.Location.Line != 4 {
		t.Fatalf("Location = %v, want line 4", err.Location)
	}
	if len(err.Context) != 4 {
		t.Fatalf("Context has %d lines, want 4: %q", len(err.Context), err.Context)
	}
	if err.Context[2] != "  mutation_rate: 3" {
		t.Errorf("Context[2] = %q", err.Context[2])
	}
}

func TestWithLocationFromError(t *testing.T) {
	path := writeConfig(t)

	err := New(CodeConfigInvalid).WithLocationFromError(path, stderrors.New("yaml: line 3: mapping values are not allowed"))
	if err.Location == nil || err.Location.Line != 3 {
		t.Fatalf("Location = %v, want line 3", err.Location)
	}

	err = New(CodeConfigInvalid).WithLocationFromError(path, stderrors.New("unexpected EOF"))
	if err.Location != nil {
		t.Errorf("Location = %v, want nil", err.Location)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	path := writeConfig(t)
	err := New(CodeConfigValue).
		WithLocation(path, 4, 0).
		WithSuggestion("bench.mutation_rate must be between 0 and 1").
		Wrap(stderrors.New("mutation_rate 3 out of range"))

	formatted := err.Format()

	for _, want := range []string{
		"ERROR E121: Invalid configuration value",
		path + ":4",
		"→    4 │   mutation_rate: 3",
		"     3 │   pairs: 100",
		"Cause: mutation_rate 3 out of range",
		"Hint: bench.mutation_rate must be between 0 and 1",
	} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format() missing %q:\n%s", want, formatted)
		}
	}
	if strings.Contains(formatted, "\033[") {
		t.Error("Format() should not contain color codes when colors are disabled")
	}
}

func TestFormatCompact(t *testing.T) {
	err := New(CodeConfigValue)
	err.Location = &Location{File: "vtree.yaml", Line: 10}

	if got, want := err.FormatCompact(), "vtree.yaml:10: E121: Invalid configuration value"; got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New(CodeReplayMismatch).WithSuggestion("rerun with --seed 7").Wrap(stderrors.New("pair 3"))

	var out map[string]any
	if jsonErr := json.Unmarshal([]byte(err.FormatJSON()), &out); jsonErr != nil {
		t.Fatalf("FormatJSON() is not valid JSON: %v", jsonErr)
	}
	if out["code"] != CodeReplayMismatch {
		t.Errorf("code = %v", out["code"])
	}
	if out["category"] != string(CategoryVerify) {
		t.Errorf("category = %v", out["category"])
	}
	if out["cause"] != "pair 3" {
		t.Errorf("cause = %v", out["cause"])
	}
	if _, ok := out["location"]; ok {
		t.Error("location should be omitted")
	}
}

func TestPrint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Print(&buf, New(CodeMetricsServer))
	if !strings.Contains(buf.String(), "ERROR E141: Metrics server failed") {
		t.Errorf("Print(*Error) = %q", buf.String())
	}

	buf.Reset()
	Print(&buf, stderrors.New("plain"))
	if got := buf.String(); got != "\nERROR: plain\n\n" {
		t.Errorf("Print(error) = %q", got)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six seven", 10)
	for _, line := range lines {
		if len(line) > 10 {
			t.Errorf("line %q is longer than 10", line)
		}
	}
	if got := strings.Join(lines, " "); got != "one two three four five six seven" {
		t.Errorf("wrapped text = %q", got)
	}
	if wrapText("", 10) != nil {
		t.Error("wrapText(\"\") should be nil")
	}
}

func TestRegistry(t *testing.T) {
	codes := Codes()
	if len(codes) == 0 {
		t.Fatal("no registered codes")
	}
	for i, code := range codes {
		if i > 0 && codes[i-1] >= code {
			t.Errorf("Codes() not sorted at %d", i)
		}
		tmpl, ok := Lookup(code)
		if !ok || tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("code %s has an incomplete template", code)
		}
	}

	Register("E999", Template{Category: CategoryCLI, Message: "Test"})
	defer delete(registry, "E999")
	if New("E999").Message != "Test" {
		t.Error("registered template not used")
	}
}
