package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/arikorhonen/boxtext/internal/loader"
	"github.com/arikorhonen/boxtext/internal/store"
)

// Fetch command flags.
var (
	flagFileIDs   []string
	flagFolderID  string
	flagRecursive bool
	flagLimit     int
	flagDBPath    string
	flagStream    bool
)

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Retrieve text for Box files",
		Long: "Fetch the text or markdown representation of Box files, selected by\n" +
			"explicit file IDs (--file, repeatable), a folder to traverse (--folder),\n" +
			"or both — file IDs are processed first, then the folder.",
		RunE: runFetch,
	}

	cmd.Flags().StringSliceVar(&flagFileIDs, "file", nil, "file ID to fetch (repeatable)")
	cmd.Flags().StringVar(&flagFolderID, "folder", "", "folder ID to traverse")
	cmd.Flags().BoolVarP(&flagRecursive, "recursive", "r", false, "recurse into subfolders")
	cmd.Flags().IntVar(&flagLimit, "limit", 0, "truncate content to this many characters (0 = no limit)")
	cmd.Flags().StringVar(&flagDBPath, "db", "", "also save documents to this SQLite database")
	cmd.Flags().BoolVar(&flagStream, "stream", false, "emit documents as they are fetched instead of all at once")

	return cmd
}

func runFetch(cmd *cobra.Command, _ []string) error {
	logger := buildLogger()
	ctx := cmd.Context()

	client, err := buildClient(ctx, resolvedCfg, logger)
	if err != nil {
		return err
	}

	characterLimit := flagLimit
	if characterLimit == 0 {
		characterLimit = resolvedCfg.Loader.CharacterLimit
	}

	l := loader.New(client, loader.Config{PageSize: resolvedCfg.Loader.PageSize}, logger)

	opts := loader.Options{
		FileIDs:        flagFileIDs,
		FolderID:       flagFolderID,
		Recursive:      flagRecursive,
		CharacterLimit: characterLimit,
	}

	if flagStream {
		return fetchStream(cmd, l, opts)
	}

	return fetchEager(cmd, l, opts, logger)
}

// fetchEager loads every document before printing, and optionally
// archives the batch.
func fetchEager(cmd *cobra.Command, l *loader.Loader, opts loader.Options, logger *slog.Logger) error {
	ctx := cmd.Context()

	docs, err := l.Load(ctx, opts)
	if err != nil {
		return err
	}

	if flagDBPath != "" {
		runID := uuid.NewString()

		st, err := store.Open(ctx, flagDBPath, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.SaveDocuments(ctx, runID, docs); err != nil {
			return err
		}

		statusf("Saved %d documents to %s (run %s)\n", len(docs), flagDBPath, runID)
	}

	for i := range docs {
		if err := printDocument(&docs[i]); err != nil {
			return err
		}
	}

	logger.Info("fetch complete", "documents", len(docs))

	return nil
}

// fetchStream emits each document as soon as it is produced. The
// document store needs the whole batch under one run ID, so --db is
// rejected here rather than silently buffering.
func fetchStream(cmd *cobra.Command, l *loader.Loader, opts loader.Options) error {
	if flagDBPath != "" {
		return fmt.Errorf("--db cannot be combined with --stream")
	}

	seq, err := l.LazyLoad(cmd.Context(), opts)
	if err != nil {
		return err
	}

	count := 0

	for doc := range seq {
		if err := printDocument(&doc); err != nil {
			return err
		}

		count++
	}

	statusf("Fetched %d documents.\n", count)

	return nil
}

// printDocument writes one document to stdout: JSON under --json, a
// readable header + content otherwise.
func printDocument(doc *loader.Document) error {
	if flagJSON {
		enc := json.NewEncoder(os.Stdout)

		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding document: %w", err)
		}

		return nil
	}

	fmt.Printf("=== %s (%s)\n", doc.Metadata.FileName, doc.Metadata.FileID)
	fmt.Println(strings.TrimRight(doc.Content, "\n"))
	fmt.Println()

	return nil
}
