package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/config"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/sealer"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/store"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/store/memory"
)

// snapshotCmd represents the snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Inspect memory backend snapshots",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'snapshot' requires a subcommand show")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show [path]",
	Short: "Summarize a snapshot file",
	Long: `Summarize a snapshot file.

The snapshot is opened with NOTES_DATA_KEY when set. Ciphertexts and
encrypted secrets are never printed, only counts per principal.

Example:
  notesctl snapshot show
  notesctl snapshot show /var/lib/notes/snapshot --output json`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")
		path := ""
		if len(args) > 0 {
			path = args[0]
		}

		if err := showSnapshot(path, output); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to show snapshot: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotShowCmd)
	snapshotShowCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func showSnapshot(path, output string) error {
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		path = cfg.SnapshotPath
	}
	if path == "" {
		return fmt.Errorf("no snapshot path given and snapshot_path is not configured")
	}

	var cipher sealer.Cipher
	s, err := sealer.FromEnv()
	switch {
	case errors.Is(err, sealer.ErrNoDataKey):
	case err != nil:
		return err
	default:
		cipher = s
	}

	snap, err := memory.ReadSnapshot(path, cipher)
	if err != nil {
		return err
	}

	if output == "json" {
		data, err := memory.MarshalSnapshot(redact(snap))
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Snapshot version %d, next note id %s\n", snap.Version, snap.NextNoteID)
	for _, p := range snap.Principals {
		fmt.Printf("%s: %d device(s), %d secret(s), %d note(s)\n",
			p.Principal, len(p.Devices), len(p.Secrets), len(p.Notes))
	}
	return nil
}

// redact blanks ciphertexts so the JSON output only shows structure.
func redact(snap memory.Snapshot) memory.Snapshot {
	out := snap
	out.Principals = make([]memory.PrincipalSnapshot, len(snap.Principals))
	for i, p := range snap.Principals {
		secrets := make([]store.SecretEntry, len(p.Secrets))
		for j, e := range p.Secrets {
			secrets[j] = store.SecretEntry{PublicKey: e.PublicKey, EncryptedSecret: "<redacted>"}
		}
		notes := make([]memory.NoteSnapshot, len(p.Notes))
		for j, n := range p.Notes {
			notes[j] = memory.NoteSnapshot{ID: n.ID, Ciphertext: "<redacted>"}
		}
		p.Secrets = secrets
		p.Notes = notes
		out.Principals[i] = p
	}
	return out
}
