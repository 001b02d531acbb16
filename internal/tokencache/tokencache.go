// Package tokencache persists OAuth2 tokens on disk so short-lived
// client-credentials tokens are reused across CLI invocations instead
// of minting a fresh one per run. This is a leaf package imported by
// the CLI wiring only.
package tokencache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
)

// FilePerms restricts cache files to owner-only read/write.
const FilePerms = 0o600

// DirPerms is used when creating the cache directory.
const DirPerms = 0o700

// Load reads a cached token from disk. Returns (nil, nil) if the file
// does not exist.
func Load(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil //nolint:nilnil // sentinel for "not found"
	}

	if err != nil {
		return nil, fmt.Errorf("tokencache: reading %s: %w", path, err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("tokencache: decoding %s: %w", path, err)
	}

	return &tok, nil
}

// Save writes a token to disk atomically (write-to-temp + rename) with
// 0600 permissions. Never logs token values.
func Save(path string, tok *oauth2.Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("tokencache: encoding: %w", err)
	}

	dir := filepath.Dir(path)
	if mkErr := os.MkdirAll(dir, DirPerms); mkErr != nil {
		return fmt.Errorf("tokencache: creating directory %s: %w", dir, mkErr)
	}

	// Atomic write: temp file in the same directory, then rename.
	// Same directory guarantees same filesystem for rename(2).
	tmp, err := os.CreateTemp(dir, ".token-*.tmp")
	if err != nil {
		return fmt.Errorf("tokencache: creating temp file: %w", err)
	}

	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := os.Chmod(tmpPath, FilePerms); err != nil {
		tmp.Close()
		return fmt.Errorf("tokencache: setting permissions: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("tokencache: writing: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("tokencache: closing: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("tokencache: renaming: %w", err)
	}

	success = true

	return nil
}

// Source wraps an oauth2.TokenSource with an on-disk cache. A valid
// cached token is served without touching the inner source; a fresh
// token from the inner source is persisted before being returned.
// Cache I/O failures degrade to pass-through with a warning — the
// cache is an optimization, never a gate.
type Source struct {
	path   string
	inner  oauth2.TokenSource
	logger *slog.Logger

	mu sync.Mutex
}

// NewSource creates a caching token source persisting to path.
func NewSource(path string, inner oauth2.TokenSource, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}

	return &Source{path: path, inner: inner, logger: logger}
}

// Token returns a valid token, preferring the disk cache.
func (s *Source) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cached, err := Load(s.path)
	if err != nil {
		s.logger.Warn("token cache unreadable, fetching fresh token",
			slog.String("path", s.path),
			slog.String("error", err.Error()),
		)
	} else if cached.Valid() {
		return cached, nil
	}

	tok, err := s.inner.Token()
	if err != nil {
		return nil, fmt.Errorf("tokencache: fetching token: %w", err)
	}

	if saveErr := Save(s.path, tok); saveErr != nil {
		s.logger.Warn("persisting token failed",
			slog.String("path", s.path),
			slog.String("error", saveErr.Error()),
		)
	}

	return tok, nil
}
