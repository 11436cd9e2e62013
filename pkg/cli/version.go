package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := struct {
			Version   string `json:"version"`
			Commit    string `json:"commit"`
			BuildDate string `json:"buildDate"`
			Go        string `json:"go"`
		}{Version, Commit, BuildDate, runtime.Version()}

		return printResult(cmd, info, func(w io.Writer) {
			fmt.Fprintf(w, "mockwire %s (commit %s, built %s, %s)\n", info.Version, info.Commit, info.BuildDate, info.Go)
		})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
