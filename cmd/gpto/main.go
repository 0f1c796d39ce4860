package main

import (
	"os"

	"github.com/sleepstars/gpto/internal/cli"
	"github.com/sleepstars/gpto/internal/ui"
)

func main() {
	if err := cli.Execute(); err != nil {
		ui.Error(os.Stderr, err)
		os.Exit(1)
	}
}
