// Package main is the entry point for the spell planner
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	envFile string
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "planner",
	Short: "Spell planner for class spell lines and qualities",
	Long: `planner tracks characters, the spells they know at their level and the
quality each spell is trained to. It serves a JSON API and offers the same
operations from the command line.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file with PLANNER_ settings")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Timeout for a single command")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(charactersCmd)
	rootCmd.AddCommand(catalogCmd)
}
