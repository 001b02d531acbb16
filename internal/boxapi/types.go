package boxapi

import "time"

// Entry type discriminators returned by the folder items endpoint.
const (
	TypeFile    = "file"
	TypeFolder  = "folder"
	TypeWebLink = "web_link"
)

// File is a Box file's metadata snapshot. Fields are normalized from
// the API response — callers never see raw API data.
type File struct {
	ID         string
	Name       string
	Size       int64
	Extension  string // lowercase, no leading dot
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// Entry is one item from a folder listing page. Type is TypeFile,
// TypeFolder, or TypeWebLink.
type Entry struct {
	ID         string
	Type       string
	Name       string
	Size       int64
	Extension  string
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// Representation state values reported by the Box representations API.
const (
	RepStateSuccess    = "success"
	RepStateViewable   = "viewable"
	RepStatePending    = "pending"
	RepStateProcessing = "processing"
	RepStateNone       = "none"
	RepStateError      = "error"
)

// Representation is one entry from a file's representations listing.
// State is empty when the API omitted the status object; InfoURL is
// empty when no info link was provided.
type Representation struct {
	Kind          string // e.g. "extracted_text", "markdown"
	State         string
	StatusMessage string
	InfoURL       string
}

// User is the authenticated Box user, from GET /users/me.
type User struct {
	ID    string
	Name  string
	Login string
}
