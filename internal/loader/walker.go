package loader

import (
	"context"
	"iter"
	"log/slog"
	"slices"

	"github.com/arikorhonen/boxtext/internal/boxapi"
)

// Walker enumerates a folder's files page by page, optionally
// recursing into subfolders depth-first in pre-order. Recursion uses
// an explicit work stack, so depth is bounded by the tree, not the
// goroutine stack.
type Walker struct {
	api    API
	cfg    Config
	logger *slog.Logger
}

// walkFrame is one folder being enumerated: its pagination cursor plus
// the remainder of the current page.
type walkFrame struct {
	folderID string
	offset   int
	page     []boxapi.Entry
	idx      int
	last     bool // current page was short of PageSize; no further fetches
}

// Walk returns a lazy, pull-driven sequence of file entries under
// folderID. Nothing is fetched until the consumer pulls, and no more
// than the current page per folder depth is buffered. Subfolder
// entries are expanded in place when recursive, silently dropped
// otherwise; web links are always skipped.
//
// A failed listing abandons that folder's remaining entries (logged)
// without affecting siblings or entries already yielded. Stopping the
// pull stops all network activity.
func (w *Walker) Walk(ctx context.Context, folderID string, recursive bool) iter.Seq[boxapi.Entry] {
	return func(yield func(boxapi.Entry) bool) {
		stack := []walkFrame{{folderID: folderID}}

		for len(stack) > 0 {
			frame := &stack[len(stack)-1]

			if frame.idx < len(frame.page) {
				entry := frame.page[frame.idx]
				frame.idx++

				switch entry.Type {
				case boxapi.TypeFile:
					if !yield(entry) {
						return
					}
				case boxapi.TypeFolder:
					if recursive {
						// Depth-first pre-order: descend before the rest of
						// this page.
						stack = append(stack, walkFrame{folderID: entry.ID})
					}
				}

				continue
			}

			if frame.last {
				stack = stack[:len(stack)-1]

				continue
			}

			entries, err := w.api.ListFolderItems(ctx, frame.folderID, frame.offset, w.cfg.PageSize)
			if err != nil {
				w.logger.Warn("folder listing failed, abandoning subtree",
					slog.String("folder_id", frame.folderID),
					slog.Int("offset", frame.offset),
					slog.String("error", err.Error()),
				)

				stack = stack[:len(stack)-1]

				continue
			}

			frame.page = entries
			frame.idx = 0
			frame.offset += len(entries)

			// A full page may hide more entries behind it; only a short
			// page (including empty) terminates this folder.
			if len(entries) < w.cfg.PageSize {
				frame.last = true
			}
		}
	}
}

// List eagerly collects Walk's sequence into a slice, in the same
// depth-first pre-order.
func (w *Walker) List(ctx context.Context, folderID string, recursive bool) []boxapi.Entry {
	return slices.Collect(w.Walk(ctx, folderID, recursive))
}
