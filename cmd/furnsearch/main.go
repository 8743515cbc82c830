// Package main provides the entry point for the furnsearch CLI.
package main

import (
	"os"

	"github.com/kailas-cloud/furnsearch/cmd/furnsearch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
