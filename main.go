package main

import (
	"os"

	"github.com/mrima/records-portal/internal/cli"
	"github.com/mrima/records-portal/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	root := cli.NewRootCommand(Version+" ("+Commit+")", entrypoint.Run)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
