// Package main provides the career_advisor command: the web server, one-shot
// analyses in the terminal and share-link tools.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "career_advisor",
	Short: "AI Career Advisor",
	Long: "AI Career Advisor explains how AI is changing a job or field and points to courses, " +
		"APIs and communities to keep up. Results can be shared as self-contained links.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
