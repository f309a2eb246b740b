package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/noob-code80/solana-geyser-test/build-tools/pkg/bootstrap"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Builds the geyser service in release mode",
	Long: `Locates the POSIX shell the build needs, points PROTOC at a local protoc
install if one exists and runs the configured build command (cargo build
--release by default). The build's exit status becomes this command's exit
status.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, err := cmd.Flags().GetBool("dry")
		if err != nil {
			return err
		}

		root, cfg, err := loadProject()
		if err != nil {
			return err
		}

		logger := zerolog.New(NewConsoleWriter())
		ctx := bootstrap.WithLogger(cmd.Context(), &logger)

		return bootstrap.Run(ctx, root, cfg, bootstrap.OsFS(), dryRun)
	},
}

func init() {
	buildCmd.Flags().BoolP("dry", "n", false, "dry run; only print the commands, don't execute anything")
	rootCmd.AddCommand(buildCmd)
}
