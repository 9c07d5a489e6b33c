package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pjson",
	Short: "Incremental JSON tokenizer and parser demo",
	Long:  `pjson reads JSON from stdin and reports what it finds, using the pjson library's Tokenizer and Parser.`,
}

// Execute runs the root command, printing any returned error to stderr and
// exiting non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(parseCmd)
}
