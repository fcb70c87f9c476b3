// Package main provides the chdialect command.
package main

import (
	"os"

	"github.com/leapstack-labs/clickhouse-dialect/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
