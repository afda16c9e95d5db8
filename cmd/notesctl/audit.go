package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/audit"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit trail",
	Long:  `Inspect audit records persisted to the database named by AUDIT_DATABASE_URL.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'audit' requires a subcommand (list)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent audit records",
	Long: `List recent audit records, newest first, as RFC5424 lines.

Example:
  notesctl audit list --kind secret --limit 20
  notesctl audit list --output json`,
	Run: func(cmd *cobra.Command, args []string) {
		kind, _ := cmd.Flags().GetString("kind")
		limit, _ := cmd.Flags().GetInt("limit")
		output, _ := cmd.Flags().GetString("output")

		if err := listAudit(kind, limit, output); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list audit records: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditListCmd)
	auditListCmd.Flags().String("kind", "", "Only show records of this kind (device, secret, note, authn)")
	auditListCmd.Flags().Int("limit", 50, "Maximum number of records")
	auditListCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func listAudit(kind string, limit int, output string) error {
	s, err := audit.NewStore()
	if err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("%s is not set", audit.DatabaseURLEnv)
	}
	defer func() { _ = s.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	messages, err := s.Recent(ctx, kind, limit)
	if err != nil {
		return err
	}
	return printAudit(os.Stdout, messages, output)
}

func printAudit(w io.Writer, messages []audit.Message, output string) error {
	switch output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(messages)
	case "text":
		for _, m := range messages {
			if _, err := fmt.Fprintln(w, m.Format()); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}
