package errors

import "sort"

// Template defines a registered error code.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

// Codes used by the vtree command.
const (
	CodeConfigInvalid   = "E120"
	CodeConfigValue     = "E121"
	CodeConfigNotFound  = "E122"
	CodeFlagInvalid     = "E140"
	CodeMetricsServer   = "E141"
	CodeReplayMismatch  = "E160"
	CodeCodecRoundTrip  = "E161"
	CodeRecoveryFailed  = "E162"
	CodeDiffInterrupted = "E163"
)

var registry = map[string]Template{
	// Configuration (E120-E139)

	CodeConfigInvalid: {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "The configuration file could not be decoded. vtree.yaml must be valid YAML and vtree.json valid JSON.",
	},
	CodeConfigValue: {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is outside its allowed range.",
	},
	CodeConfigNotFound: {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "The configuration file given with --config does not exist.",
	},

	// CLI (E140-E159)

	CodeFlagInvalid: {
		Category: CategoryCLI,
		Message:  "Invalid flag value",
		Detail:   "A command line flag has a value the command cannot use.",
	},
	CodeMetricsServer: {
		Category: CategoryCLI,
		Message:  "Metrics server failed",
		Detail:   "The HTTP server exposing /metrics stopped with an error.",
	},

	// Verification (E160-E179)

	CodeReplayMismatch: {
		Category: CategoryVerify,
		Message:  "Diff replay mismatch",
		Detail:   "Applying the computed diff to the previous tree did not reproduce the next tree.",
	},
	CodeCodecRoundTrip: {
		Category: CategoryVerify,
		Message:  "Codec round trip failed",
		Detail:   "A diff frame could not be decoded back to an equivalent diff.",
	},
	CodeRecoveryFailed: {
		Category: CategoryVerify,
		Message:  "Document recovery failed",
		Detail:   "Replaying the document history onto its first snapshot did not reproduce the live tree.",
	},
	CodeDiffInterrupted: {
		Category: CategoryVerify,
		Message:  "Diff run interrupted",
		Detail:   "The diff run was canceled before every pair was diffed.",
	},
}

// Codes returns every registered code, sorted.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Lookup returns the template for code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds or replaces a template. It is not safe to call concurrently
// with New.
func Register(code string, template Template) {
	registry[code] = template
}
