// cmd/trellis/main.go
//
// Entry point for the trellis CLI. All command wiring lives in internal/cli;
// this file only sets the version and the exit code.

package main

import (
	"os"

	"trellis/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
