package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/config"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/middleware"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/store"
)

// tokenCmd represents the token command
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage bearer tokens",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'token' requires a subcommand issue")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue <principal>",
	Short: "Issue a bearer token for a principal",
	Long: `Issue a bearer token for a principal.

The token is signed with NOTES_TOKEN_KEY and is valid for token_ttl seconds
unless --ttl is given.

Example:
  notesctl token issue alice
  notesctl token issue alice --ttl 15m`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ttl, _ := cmd.Flags().GetDuration("ttl")

		token, err := issueToken(args[0], ttl)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Failed to issue token:", err)
			os.Exit(1)
		}
		fmt.Println(token)
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenIssueCmd)
	tokenIssueCmd.Flags().Duration("ttl", 0, "token lifetime (defaults to token_ttl from configuration)")
}

func issueToken(principal string, ttl time.Duration) (string, error) {
	if err := store.RequireNonEmpty("principal", principal); err != nil {
		return "", err
	}
	key, err := middleware.TokenKeyFromEnv()
	if err != nil {
		return "", err
	}
	if ttl <= 0 {
		cfg, err := config.Load()
		if err != nil {
			return "", err
		}
		ttl = cfg.TokenLifetime()
	}
	return middleware.NewTokenAuthenticator(key).Issue(principal, ttl)
}
