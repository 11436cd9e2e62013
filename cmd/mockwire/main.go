// mockwire CLI - lint, match and serve HTTP mock definitions
package main

import (
	"os"

	"github.com/getmockd/mockwire/pkg/cli"
)

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	cli.Version = Version
	cli.Commit = Commit
	cli.BuildDate = BuildDate
	return cli.Execute()
}
