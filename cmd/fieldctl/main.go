// Command fieldctl inspects field metadata from the command line.
package main

import (
	"fmt"
	"os"

	"magnetunits/internal/cli"
)

var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
