package cmd

import (
	"github.com/spf13/cobra"

	"github.com/noob-code80/solana-geyser-test/build-tools/pkg"
)

var installToolsCmd = &cobra.Command{
	Use:   "install-tools",
	Short: "Installs Go CLI tools",
	Long: `Installs the tools listed in tools.go into the workspace .tools
directory. If you have direnv enabled, they will be available in your PATH.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, _, err := loadProject()
		if err != nil {
			return err
		}

		return pkg.InstallTools(root)
	},
}

func init() {
	rootCmd.AddCommand(installToolsCmd)
}
