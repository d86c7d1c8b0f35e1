// Package main provides the entry point for the evobench benchmark harness.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "evobench",
	Short: "Benchmark harness for evolutionary pipeline search",
	Long:  "evobench drives an evolutionary pipeline-search engine against classification benchmark suites, recording per-task evolution history, candidate pipelines and held-out accuracy scores.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
