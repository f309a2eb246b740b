package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/noob-code80/solana-geyser-test/build-tools/pkg/bootstrap"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Prints the environment overrides the build would receive",
	Long: `Resolves the build dependencies and prints the resulting environment
overrides (PROTOC and the extended PATH), one KEY=VALUE per line. The
process environment itself is never modified.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadProject()
		if err != nil {
			return err
		}

		plan, err := bootstrap.Resolve(cfg, bootstrap.OsFS())
		if err != nil {
			return err
		}

		overrides := plan.Env.Overrides()
		names := make([]string, 0, len(overrides))
		for name := range overrides {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			fmt.Printf("%s=%s\n", name, overrides[name])
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(envCmd)
}
