// Package main is the genseries command.
package main

import (
	"os"

	"github.com/leapstack-labs/genseries/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
