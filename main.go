package main

import (
	"os"

	"github.com/nstehr/venture/venture-core/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
