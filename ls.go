package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arikorhonen/boxtext/internal/boxapi"
)

// lsPageSize matches the loader's folder page size.
const lsPageSize = 100

func newLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls FOLDER_ID",
		Short: "List the items in a Box folder",
		Args:  cobra.ExactArgs(1),
		RunE:  runLs,
	}
}

// lsItem is the JSON schema for `ls --json`.
type lsItem struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	ModifiedAt string `json:"modified_at,omitempty"`
}

func runLs(cmd *cobra.Command, args []string) error {
	logger := buildLogger()
	ctx := cmd.Context()
	folderID := args[0]

	client, err := buildClient(ctx, resolvedCfg, logger)
	if err != nil {
		return err
	}

	var items []lsItem

	offset := 0

	for {
		entries, err := client.ListFolderItems(ctx, folderID, offset, lsPageSize)
		if err != nil {
			return fmt.Errorf("listing folder %s: %w", folderID, err)
		}

		for _, e := range entries {
			item := lsItem{ID: e.ID, Type: e.Type, Name: e.Name, Size: e.Size}
			if !e.ModifiedAt.IsZero() {
				item.ModifiedAt = e.ModifiedAt.Format("2006-01-02 15:04")
			}

			items = append(items, item)
		}

		if len(entries) < lsPageSize {
			break
		}

		offset += len(entries)
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		if err := enc.Encode(items); err != nil {
			return fmt.Errorf("encoding JSON output: %w", err)
		}

		return nil
	}

	for _, item := range items {
		marker := " "
		if item.Type == boxapi.TypeFolder {
			marker = "/"
		}

		fmt.Printf("%-14s %10d  %-16s %s%s\n", item.ID, item.Size, item.ModifiedAt, item.Name, marker)
	}

	return nil
}
