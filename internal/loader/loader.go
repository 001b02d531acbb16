// Package loader retrieves human-readable text for Box files, driving
// the asynchronous representation protocol: resolve readiness by
// polling, fetch content through two-stage URL indirection, and
// assemble one output Document per surviving input file. Per-file
// failures become diagnostic content, never batch aborts. All remote
// calls are issued strictly sequentially to respect upstream rate
// limits.
package loader

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/arikorhonen/boxtext/internal/boxapi"
)

// API is the surface this engine consumes from the Box client.
// Defined at the consumer per Go convention "accept interfaces,
// return structs"; boxapi.Client is the real implementation.
type API interface {
	GetFile(ctx context.Context, fileID string) (*boxapi.File, error)
	ListFolderItems(ctx context.Context, folderID string, offset, limit int) ([]boxapi.Entry, error)
	ListRepresentations(ctx context.Context, fileID, kindHint string) ([]boxapi.Representation, error)
	GetURL(ctx context.Context, url string) (*http.Response, error)
}

// ErrNoInput is returned when Options names neither file IDs nor a
// folder ID. Raised before any I/O.
var ErrNoInput = errors.New("loader: either file IDs or a folder ID is required")

// Options selects what to load. FileIDs and FolderID may both be set:
// explicit IDs are processed first, then the folder traversal.
type Options struct {
	FileIDs        []string
	FolderID       string
	Recursive      bool
	CharacterLimit int
}

func (o Options) validate() error {
	if len(o.FileIDs) == 0 && o.FolderID == "" {
		return ErrNoInput
	}

	return nil
}

// Loader orchestrates resolution, fetching, folder traversal, and
// document assembly for eager and lazy batch loads.
type Loader struct {
	api    API
	cfg    Config
	logger *slog.Logger

	resolver *Resolver
	fetcher  *Fetcher
	walker   *Walker

	// sleep is called for the empty-retry delays. Tests override it
	// (and the resolver's copy) to avoid real waits.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Loader. Zero-valued Config fields fall back to the
// defaults. Panics if api is nil — a loader without a client cannot
// perform a single operation.
func New(api API, cfg Config, logger *slog.Logger) *Loader {
	if api == nil {
		panic("loader: New requires an API client")
	}

	if logger == nil {
		logger = slog.Default()
	}

	cfg = cfg.withDefaults()

	l := &Loader{
		api:    api,
		cfg:    cfg,
		logger: logger,
		sleep:  sleepContext,
	}

	l.resolver = &Resolver{api: api, cfg: cfg, logger: logger, sleep: sleepContext}
	l.fetcher = &Fetcher{api: api, logger: logger}
	l.walker = &Walker{api: api, cfg: cfg, logger: logger}

	return l
}

// Load eagerly retrieves every selected file and returns the documents
// in order: explicit file ID order first, then depth-first pre-order
// of the folder traversal.
func (l *Loader) Load(ctx context.Context, opts Options) ([]Document, error) {
	seq, err := l.LazyLoad(ctx, opts)
	if err != nil {
		return nil, err
	}

	return slices.Collect(seq), nil
}

// LazyLoad returns a forward-only, single-consumer sequence of
// documents, each computed on demand at consumption time. The sequence
// is finite and restartable per call; abandoning the pull stops all
// remaining network activity. Option validation happens here, before
// any I/O.
func (l *Loader) LazyLoad(ctx context.Context, opts Options) (iter.Seq[Document], error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	return func(yield func(Document) bool) {
		for _, fileID := range opts.FileIDs {
			doc, ok := l.loadByID(ctx, fileID, opts.CharacterLimit)
			if !ok {
				continue
			}

			if !yield(doc) {
				return
			}
		}

		if opts.FolderID == "" {
			return
		}

		for entry := range l.walker.Walk(ctx, opts.FolderID, opts.Recursive) {
			doc, ok := l.loadDescriptor(ctx, fileFromEntry(entry), opts.CharacterLimit)
			if !ok {
				continue
			}

			if !yield(doc) {
				return
			}
		}
	}, nil
}

// loadByID fetches the file's metadata and runs the retrieval
// pipeline. A failed metadata lookup still emits a record — content is
// the diagnostic, metadata carries what is known — so every surviving
// input ID produces exactly one document.
func (l *Loader) loadByID(ctx context.Context, fileID string, limit int) (Document, bool) {
	file, err := l.api.GetFile(ctx, fileID)
	if err != nil {
		l.logger.Warn("file metadata lookup failed",
			slog.String("file_id", fileID),
			slog.String("error", err.Error()),
		)

		doc := Assemble(boxapi.File{ID: fileID}, failure(FailureMetadata, err.Error()), limit)

		return *doc, true
	}

	return l.loadDescriptor(ctx, *file, limit)
}

// loadDescriptor runs the retrieval pipeline for a known file
// descriptor. Image and video files are skipped before any
// representation request is issued.
func (l *Loader) loadDescriptor(ctx context.Context, file boxapi.File, limit int) (Document, bool) {
	if ShouldSkip(file.Extension) {
		l.logger.Debug("skipping binary media file",
			slog.String("file_id", file.ID),
			slog.String("extension", file.Extension),
		)

		return Document{}, false
	}

	outcome := l.retrieve(ctx, file.ID, KindForExtension(file.Extension))

	doc := Assemble(file, outcome, limit)
	if doc == nil {
		return Document{}, false
	}

	if !outcome.OK() {
		l.logger.Info("file retrieval degraded to diagnostic",
			slog.String("file_id", file.ID),
			slog.Int("failure", int(outcome.Failure)),
		)
	}

	return *doc, true
}

// retrieve runs resolve→fetch with the empty-result retry: emptiness
// may indicate a representation that reported ready prematurely, so
// the full cycle is re-run up to EmptyRetries times. The first
// non-empty text wins; otherwise the last result stands.
func (l *Loader) retrieve(ctx context.Context, fileID string, kind Kind) Outcome {
	var outcome Outcome

	for attempt := 0; ; attempt++ {
		outcome = l.attemptOnce(ctx, fileID, kind)

		if !outcome.OK() {
			return outcome
		}

		if strings.TrimSpace(outcome.Text) != "" {
			return outcome
		}

		if attempt >= l.cfg.EmptyRetries {
			return outcome
		}

		delay := l.cfg.EmptyRetryDelay * time.Duration(attempt+1)
		l.logger.Debug("empty representation content, retrying",
			slog.String("file_id", fileID),
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
		)

		if err := l.sleep(ctx, delay); err != nil {
			return failure(FailureNetwork, "canceled while retrying: "+err.Error())
		}
	}
}

// attemptOnce is one full resolve→fetch cycle.
func (l *Loader) attemptOnce(ctx context.Context, fileID string, kind Kind) Outcome {
	desc, failed := l.resolver.Resolve(ctx, fileID, kind)
	if desc == nil {
		return failed
	}

	return l.fetcher.Fetch(ctx, desc)
}

// sleepContext waits for the given duration or until the context is
// canceled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
