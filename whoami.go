package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Display the authenticated Box user",
		RunE:  runWhoami,
	}
}

// whoamiOutput is the JSON schema for `whoami --json`.
type whoamiOutput struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Login string `json:"login"`
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	logger := buildLogger()
	ctx := cmd.Context()

	client, err := buildClient(ctx, resolvedCfg, logger)
	if err != nil {
		return err
	}

	user, err := client.Me(ctx)
	if err != nil {
		return fmt.Errorf("fetching user profile: %w", err)
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		if err := enc.Encode(whoamiOutput{ID: user.ID, Name: user.Name, Login: user.Login}); err != nil {
			return fmt.Errorf("encoding JSON output: %w", err)
		}

		return nil
	}

	fmt.Printf("User:  %s (%s)\n", user.Name, user.Login)
	fmt.Printf("ID:    %s\n", user.ID)

	return nil
}
