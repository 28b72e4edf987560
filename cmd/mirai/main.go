// Package main provides the entry point for the mirai CLI.
package main

import (
	"os"

	"github.com/liteclaw/mirai/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
