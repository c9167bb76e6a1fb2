package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vtree/internal/config"
	"github.com/vango-dev/vtree/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	noColor    bool
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		errors.Print(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "vtree",
		Short: "Keyed tree reconciliation toolkit",
		Long: `vtree computes minimal hierarchical diffs between keyed element trees.

The bench command generates seeded random tree pairs, diffs them in
parallel, replays and verifies every diff, and reports timings, change
counts and frame sizes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				errors.DisableColors()
			}
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "configuration file (default: vtree.yaml, vtree.yml or vtree.json in the working directory)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format: text or json")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored error output")

	rootCmd.AddCommand(
		benchCmd(opts),
		sampleCmd(opts),
		configCmd(opts),
		versionCmd(),
	)
	return rootCmd
}

// loadConfig reads the configuration named by --config, or the one in the
// working directory if there is one, and applies the global flags.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case o.configPath != "":
		cfg, err = config.LoadFile(o.configPath)
	case config.Exists("."):
		cfg, err = config.Load(".")
	default:
		cfg = config.New()
	}
	if err != nil {
		return nil, err
	}

	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	return cfg, nil
}

// newLogger builds the command logger. Logs go to stderr so that reports on
// stdout stay machine readable.
func newLogger(cfg *config.Config, stderr io.Writer) *slog.Logger {
	return cfg.Log.NewLogger(stderr)
}

func flagError(name string, format string, args ...any) error {
	return errors.New(errors.CodeFlagInvalid).
		Wrap(fmt.Errorf("--%s: %s", name, fmt.Sprintf(format, args...)))
}
