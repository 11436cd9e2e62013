package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/getmockd/mockwire/pkg/cli/internal/output"
	"github.com/getmockd/mockwire/pkg/logging"
)

var (
	// Persistent flags available to all subcommands
	jsonOutput bool
	logLevel   string
	logFormat  string
	logFile    string

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mockwire",
	Short: "mockwire matches HTTP requests against mock definitions",
	Long: `mockwire loads HTTP mock definitions from YAML or JSON files and matches
requests against them: lint the files, check which mock a request would hit,
or serve the mocks over HTTP.

Definition files may include other files with "- file: <glob>" entries and
reference environment variables as ${NAME} or ${NAME:-default}.`,
	SilenceUsage:  true,
	SilenceErrors: true, // We handle errors in Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write JSON logs to this file")
}

// errReported fails a command whose error was already written as output.
var errReported = errors.New("error reported")

// Execute runs the command line and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		}
		return 1
	}
	return 0
}

// newLogger builds the operational logger from the persistent flags. The
// returned function closes the log file, if any.
func newLogger(stderr io.Writer) (*slog.Logger, func(), error) {
	level := logging.ParseLevel(logLevel)
	console := logging.Handler(logging.Config{
		Level:  level,
		Format: logging.ParseFormat(logFormat),
		Output: stderr,
	})
	if logFile == "" {
		return slog.New(console), func() {}, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	file := logging.Handler(logging.Config{
		Level:  level,
		Format: logging.FormatJSON,
		Output: f,
	})
	return slog.New(logging.NewMultiHandler(console, file)), func() { _ = f.Close() }, nil
}

// printResult outputs a single command result.
//
// When --json is active, ONLY the JSON encoding of data is written to
// stdout. textFn is called only in text mode.
func printResult(cmd *cobra.Command, data any, textFn func(w io.Writer)) error {
	if jsonOutput {
		return output.JSON(cmd.OutOrStdout(), data)
	}
	textFn(cmd.OutOrStdout())
	return nil
}
