package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/client"
)

// waitCmd represents the wait command
var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for the notes server to be ready",
	Long: `Wait for the notes server to be ready by polling the status endpoint.

This command will repeatedly check the server status until it reports ok
or the maximum number of retries is reached.

Example:
  notesctl wait
  notesctl wait --port 3000 --retries 60`,
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetInt("port")
		retries, _ := cmd.Flags().GetInt("retries")

		if err := waitForServer(port, retries); err != nil {
			fmt.Fprintf(os.Stderr, "Server did not become ready: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(waitCmd)
	waitCmd.Flags().IntP("port", "p", defaultPortInt(), "Server port to check")
	waitCmd.Flags().IntP("retries", "r", 90, "Number of retries")
}

func waitForServer(port, retries int) error {
	c := client.New(fmt.Sprintf("http://localhost:%d", port), "")
	c.HTTP = &http.Client{Timeout: 2 * time.Second}

	fmt.Println("Waiting for the notes server to be ready...")

	for i := 0; i < retries; i++ {
		status, err := c.Status(context.Background())
		if err == nil && status.Status == "ok" {
			fmt.Println()
			fmt.Printf("Notes server is ready (%s backend)\n", status.Backend)
			return nil
		}

		fmt.Print(".")
		time.Sleep(1 * time.Second)
	}

	fmt.Println()
	return fmt.Errorf("notes server is not ready after %d seconds", retries)
}
