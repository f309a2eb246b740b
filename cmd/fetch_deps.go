package cmd

import (
	"github.com/spf13/cobra"

	"github.com/noob-code80/solana-geyser-test/build-tools/pkg"
	"github.com/noob-code80/solana-geyser-test/build-tools/pkg/fetch"
)

var fetchDepsCmd = &cobra.Command{
	Use:   "fetch-deps",
	Short: "Downloads and unpacks dependencies",
	Long: `Downloads and unpacks the dependencies listed in the deps section of
build.yml, for example a pinned protoc release. Entries that are already
up to date are skipped.

With --update, mismatched or missing checksums are replaced with the
digest of the downloaded file instead of aborting.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		update, err := cmd.Flags().GetBool("update")
		if err != nil {
			return err
		}

		pkg.PrintTask("Loading config")
		root, cfg, err := loadProject()
		if err != nil {
			return err
		}

		pkg.PrintTask("Downloading dependencies")
		err = fetch.FetchAll(root, cfg.Deps, fetch.PlatformVars(cfg.Vars), nil, update)
		if err != nil {
			return err
		}

		pkg.PrintTask("Done")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchDepsCmd)
	fetchDepsCmd.Flags().BoolP("update", "u", false, "write downloaded checksums back to build.yml instead of failing on mismatch")
}
