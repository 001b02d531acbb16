package loader

import (
	"time"

	"github.com/arikorhonen/boxtext/internal/boxapi"
)

// metadataSource tags every document with its origin system.
const metadataSource = "box"

// boxFileURL is the web UI link pattern for a file.
const boxFileURL = "https://app.box.com/file/"

// Metadata describes the file a Document's content came from. Always
// fully populated from the file descriptor, even when the content is a
// diagnostic.
type Metadata struct {
	Source     string `json:"source"`
	FileID     string `json:"file_id"`
	FileName   string `json:"file_name"`
	FileType   string `json:"file_type"`
	FileSize   int64  `json:"file_size"`
	CreatedAt  string `json:"created_at"`
	ModifiedAt string `json:"modified_at"`
	BoxURL     string `json:"box_url"`
}

// Document is one output record: the retrieved text (or a diagnostic
// placeholder) plus the file's metadata.
type Document struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// metadataFor builds a Document's metadata from a file descriptor.
func metadataFor(f boxapi.File) Metadata {
	return Metadata{
		Source:     metadataSource,
		FileID:     f.ID,
		FileName:   f.Name,
		FileType:   f.Extension,
		FileSize:   f.Size,
		CreatedAt:  formatTimestamp(f.CreatedAt),
		ModifiedAt: formatTimestamp(f.ModifiedAt),
		BoxURL:     boxFileURL + f.ID,
	}
}

// formatTimestamp renders a timestamp as RFC3339, or empty when the
// API never provided one.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format(time.RFC3339)
}

// fileFromEntry converts a folder listing entry to a file descriptor.
// Folder pages already carry the full descriptor fields, so traversal
// skips the per-file metadata round trip.
func fileFromEntry(e boxapi.Entry) boxapi.File {
	return boxapi.File{
		ID:         e.ID,
		Name:       e.Name,
		Size:       e.Size,
		Extension:  e.Extension,
		CreatedAt:  e.CreatedAt,
		ModifiedAt: e.ModifiedAt,
	}
}
