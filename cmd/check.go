package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/noob-code80/solana-geyser-test/build-tools/pkg"
	"github.com/noob-code80/solana-geyser-test/build-tools/pkg/bootstrap"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verifies the build dependencies without building anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadProject()
		if err != nil {
			return err
		}

		pkg.PrintTask("Checking build dependencies")
		plan, err := bootstrap.Resolve(cfg, bootstrap.OsFS())
		if err != nil {
			return err
		}

		pkg.PrintSubtask("POSIX shell: " + filepath.Join(plan.ShellDir, cfg.ShellBinary))
		if plan.ProtocFound {
			pkg.PrintSubtask("protoc: " + plan.ProtocPath)
		} else {
			pkg.PrintWarning("protoc: not found at " + plan.ProtocPath + ", the build will use the vendored copy")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
