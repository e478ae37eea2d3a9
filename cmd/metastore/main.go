// Package main provides the metastore command.
package main

import (
	"os"

	"github.com/leapstack-labs/metastore/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
