package boxapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// fileFields is the fields selection for file metadata requests —
// exactly what the loader needs, nothing more.
const fileFields = "id,name,size,extension,created_at,modified_at"

// itemFields is the fields selection for folder item pages. Requesting
// the full descriptor here lets folder traversal skip a per-file
// metadata round trip.
const itemFields = "id,type,name,size,extension,created_at,modified_at"

// Timestamp validation bounds — timestamps outside this range are
// replaced with the zero time and a warning is logged.
const (
	minValidYear = 1970
	maxValidYear = 2100
)

// itemResponse mirrors the Box item JSON exactly. Unexported — callers
// use File/Entry via the normalization helpers.
type itemResponse struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	Extension  string `json:"extension"`
	CreatedAt  string `json:"created_at"`
	ModifiedAt string `json:"modified_at"`
}

type folderItemsResponse struct {
	TotalCount int            `json:"total_count"`
	Entries    []itemResponse `json:"entries"`
	Offset     int            `json:"offset"`
	Limit      int            `json:"limit"`
}

// toFile normalizes a Box file response into our File type.
func (r *itemResponse) toFile(logger *slog.Logger) File {
	return File{
		ID:         r.ID,
		Name:       r.Name,
		Size:       r.Size,
		Extension:  normalizeExtension(r.Extension, r.Name),
		CreatedAt:  parseTimestamp(r.CreatedAt, "created_at", r.ID, logger),
		ModifiedAt: parseTimestamp(r.ModifiedAt, "modified_at", r.ID, logger),
	}
}

// toEntry normalizes a folder listing item into our Entry type.
func (r *itemResponse) toEntry(logger *slog.Logger) Entry {
	return Entry{
		ID:         r.ID,
		Type:       r.Type,
		Name:       r.Name,
		Size:       r.Size,
		Extension:  normalizeExtension(r.Extension, r.Name),
		CreatedAt:  parseTimestamp(r.CreatedAt, "created_at", r.ID, logger),
		ModifiedAt: parseTimestamp(r.ModifiedAt, "modified_at", r.ID, logger),
	}
}

// normalizeExtension lowercases the API-provided extension, falling
// back to the filename suffix when the extension field was omitted
// (folders and some file responses leave it empty).
func normalizeExtension(ext, name string) string {
	if ext != "" {
		return strings.ToLower(ext)
	}

	if i := strings.LastIndexByte(name, '.'); i >= 0 && i < len(name)-1 {
		return strings.ToLower(name[i+1:])
	}

	return ""
}

// parseTimestamp parses an RFC3339 timestamp and validates the year range.
// Invalid or out-of-range timestamps are replaced with the zero time and logged.
func parseTimestamp(raw, field, itemID string, logger *slog.Logger) time.Time {
	if raw == "" {
		return time.Time{}
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		logger.Warn("invalid timestamp",
			slog.String("field", field),
			slog.String("item_id", itemID),
			slog.String("raw", raw),
			slog.String("error", err.Error()),
		)

		return time.Time{}
	}

	if t.Year() < minValidYear || t.Year() > maxValidYear {
		logger.Warn("timestamp out of valid range",
			slog.String("field", field),
			slog.String("item_id", itemID),
			slog.String("raw", raw),
		)

		return time.Time{}
	}

	return t
}

// GetFile retrieves a single file's metadata by ID.
func (c *Client) GetFile(ctx context.Context, fileID string) (*File, error) {
	c.logger.Debug("getting file metadata", slog.String("file_id", fileID))

	path := fmt.Sprintf("/files/%s?fields=%s", url.PathEscape(fileID), fileFields)

	resp, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var ir itemResponse
	if err := json.NewDecoder(resp.Body).Decode(&ir); err != nil {
		return nil, fmt.Errorf("boxapi: decoding file response: %w", err)
	}

	f := ir.toFile(c.logger)

	return &f, nil
}

// ListFolderItems fetches one page of a folder's items at the given
// offset. The caller drives pagination — a page shorter than limit
// means the listing is exhausted.
func (c *Client) ListFolderItems(ctx context.Context, folderID string, offset, limit int) ([]Entry, error) {
	c.logger.Debug("listing folder items",
		slog.String("folder_id", folderID),
		slog.Int("offset", offset),
		slog.Int("limit", limit),
	)

	path := fmt.Sprintf("/folders/%s/items?fields=%s&offset=%s&limit=%s",
		url.PathEscape(folderID),
		itemFields,
		strconv.Itoa(offset),
		strconv.Itoa(limit),
	)

	resp, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var fir folderItemsResponse
	if err := json.NewDecoder(resp.Body).Decode(&fir); err != nil {
		return nil, fmt.Errorf("boxapi: decoding folder items response: %w", err)
	}

	entries := make([]Entry, 0, len(fir.Entries))
	for i := range fir.Entries {
		entries = append(entries, fir.Entries[i].toEntry(c.logger))
	}

	c.logger.Debug("fetched folder items page",
		slog.String("folder_id", folderID),
		slog.Int("offset", offset),
		slog.Int("count", len(entries)),
	)

	return entries, nil
}
