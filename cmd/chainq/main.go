// Package main provides the chainq command-line interface.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/chainq/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
