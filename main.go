package main

import (
	"os"

	"obsidian_briefing_sync/cli"
)

var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
