package cmd

import (
	"os"

	"github.com/rotisserie/eris"

	"github.com/noob-code80/solana-geyser-test/build-tools/pkg"
	"github.com/noob-code80/solana-geyser-test/build-tools/pkg/bootstrap"
)

// loadProject finds the project root relative to the working directory and
// reads its build.yml (or the defaults if there is none).
func loadProject() (string, bootstrap.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", bootstrap.Config{}, eris.Wrap(err, "Failed to retrieve the current working directory")
	}

	root, err := pkg.FindProjectRoot(wd)
	if err != nil {
		return "", bootstrap.Config{}, err
	}

	cfg, err := bootstrap.LoadConfig(root)
	if err != nil {
		return "", bootstrap.Config{}, err
	}

	return root, cfg, nil
}
