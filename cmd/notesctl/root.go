package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "notesctl",
	Short: "Run and administer the encrypted notes server",
	Long: `Run and administer the encrypted notes server.

The server stores end-to-end encrypted notes for principals that own
several devices. It never sees plaintext: each device uploads the note
key encrypted under its own public key.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
