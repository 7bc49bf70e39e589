// Package main provides the entry point for the job matcher service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "match-engine",
	Short: "CV-to-job matching engine",
	Long:  "Match-engine ranks job postings against candidate CVs by fusing embedding similarity, TF-IDF overlap and skill-taxonomy coverage, served over a REST API or as a one-shot CLI run.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
