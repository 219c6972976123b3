package main

import (
	"os"

	"github.com/makhatib/mcp-microsoft365/internal/cli"
)

var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
