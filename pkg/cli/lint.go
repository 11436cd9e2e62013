package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/getmockd/mockwire/pkg/cli/internal/output"
)

var lintCmd = &cobra.Command{
	Use:   "lint <file|glob>...",
	Short: "Validate mock definition files",
	Long: `Load every definition file, resolve its includes and check that each mock
and filter is valid. All problems are reported, not just the first.`,
	Example: `  mockwire lint mocks.yaml
  mockwire lint 'mocks/**/*.yaml'
  mockwire lint --json mocks.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLint,
}

func init() {
	rootCmd.AddCommand(lintCmd)
}

// lintResult is the outcome of linting one argument.
type lintResult struct {
	File   string   `json:"file"`
	Mocks  int      `json:"mocks"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

func runLint(cmd *cobra.Command, args []string) error {
	results := make([]lintResult, 0, len(args))
	invalid := 0
	for _, arg := range args {
		result := lint(arg)
		if !result.Valid {
			invalid++
		} else if result.Mocks == 0 {
			output.Warn(cmd.ErrOrStderr(), "%s defines no mocks", arg)
		}
		results = append(results, result)
	}

	err := printResult(cmd, results, func(w io.Writer) {
		for _, r := range results {
			if r.Valid {
				fmt.Fprintf(w, "ok    %s (%d mocks)\n", r.File, r.Mocks)
				continue
			}
			fmt.Fprintf(w, "FAIL  %s\n", r.File)
			for _, msg := range r.Errors {
				fmt.Fprintf(w, "      %s\n", msg)
			}
		}
	})
	if err != nil {
		return err
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d definition files are invalid", invalid, len(results))
	}
	return nil
}

func lint(arg string) lintResult {
	result := lintResult{File: arg}
	f, err := loadDefinition(arg)
	if err == nil {
		result.Mocks = len(f.Mocks)
		err = f.Validate()
	}
	if err == nil {
		result.Valid = true
		return result
	}

	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			result.Errors = append(result.Errors, e.Error())
		}
	} else {
		result.Errors = []string{err.Error()}
	}
	return result
}
