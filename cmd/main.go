package cmd

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"mvdan.cc/sh/v3/interp"

	"github.com/noob-code80/solana-geyser-test/build-tools/pkg"
)

var rootCmd = &cobra.Command{
	Use:   "tool",
	Short: "Build helpers for the geyser service",
	Long: `This command bundles the helpers needed to build the geyser service on
machines that don't ship a POSIX shell or protoc, Windows in particular.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the code the process should
// exit with. Exit policy lives here instead of inside the resolution
// steps: a failed delegated build keeps its own exit status, everything
// else (including a missing shell) is 1.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}

	if status, ok := interp.IsExitStatus(err); ok {
		return int(status)
	}

	pkg.PrintError(eris.ToString(err, os.Getenv("BOOTSTRAP_DEBUG") != ""))
	return 1
}
