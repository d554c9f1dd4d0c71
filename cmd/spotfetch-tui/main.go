package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/bruhMomentFixer/spotfetch/internal/config"
	"github.com/bruhMomentFixer/spotfetch/internal/tui"
)

func main() {
	configFlag := pflag.StringP("config", "c", "spotfetch.yaml", "path to settings file")
	pflag.Parse()

	settings, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading settings: %v\n", err)
		os.Exit(1)
	}
	config.SetupLogger(settings)

	if err := tui.Run(settings); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
