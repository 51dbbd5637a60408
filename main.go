// Package main is the entry point for the gypn CLI application.
package main

import (
	"fmt"
	"os"

	"github.com/cdeg/gypn/cmd"
	"github.com/cdeg/gypn/internal/project"
)

// Version information, injected at build time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	rootCmd := cmd.NewRootCmd(project.OSFileReader{})
	rootCmd.Version = Version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
