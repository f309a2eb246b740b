package main

import (
	"os"

	"github.com/noob-code80/solana-geyser-test/build-tools/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
