// Package main is the entry point for the insights CLI binary.
package main

import (
	"os"

	cli "propel-insights/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
