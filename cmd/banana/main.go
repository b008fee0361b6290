// Package main provides the entry point for the banana image generation CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "banana",
	Short: "Generate and edit images with Gemini from the terminal",
	Long: `banana generates and edits images with the Gemini image models and keeps a history of every job.

Run without a command to open the interactive session.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

var (
	rootLogLevel   string
	rootConfigPath string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "", "Log level: debug, info, warn, error (defaults to BANANA_LOG or warn)")
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "", "Path to config.json (defaults to BANANA_CONFIG or the user config dir)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
