package loader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/arikorhonen/boxtext/internal/boxapi"
)

// repsStep is one scripted ListRepresentations result. The last step
// repeats once the script is exhausted.
type repsStep struct {
	reps []boxapi.Representation
	err  error
}

// urlStep is one scripted GetURL result for a given URL.
type urlStep struct {
	body string
	err  error
}

// fakeAPI is a scriptable in-memory API implementation that records
// every call it receives.
type fakeAPI struct {
	files    map[string]boxapi.File
	fileErrs map[string]error

	reps     map[string][]repsStep
	repCalls map[string]int
	repHints map[string]string

	folders     map[string][]boxapi.Entry
	folderErrs  map[string]error
	folderCalls map[string]int

	urls     map[string][]urlStep
	urlCalls []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		files:       map[string]boxapi.File{},
		fileErrs:    map[string]error{},
		reps:        map[string][]repsStep{},
		repCalls:    map[string]int{},
		repHints:    map[string]string{},
		folders:     map[string][]boxapi.Entry{},
		folderErrs:  map[string]error{},
		folderCalls: map[string]int{},
		urls:        map[string][]urlStep{},
	}
}

func (f *fakeAPI) GetFile(_ context.Context, fileID string) (*boxapi.File, error) {
	if err := f.fileErrs[fileID]; err != nil {
		return nil, err
	}

	file, ok := f.files[fileID]
	if !ok {
		return nil, fmt.Errorf("fake: no such file %q", fileID)
	}

	return &file, nil
}

func (f *fakeAPI) ListFolderItems(_ context.Context, folderID string, offset, limit int) ([]boxapi.Entry, error) {
	f.folderCalls[folderID]++

	if err := f.folderErrs[folderID]; err != nil {
		return nil, err
	}

	all := f.folders[folderID]
	if offset >= len(all) {
		return []boxapi.Entry{}, nil
	}

	end := offset + limit
	if end > len(all) {
		end = len(all)
	}

	return all[offset:end], nil
}

func (f *fakeAPI) ListRepresentations(_ context.Context, fileID, kindHint string) ([]boxapi.Representation, error) {
	n := f.repCalls[fileID]
	f.repCalls[fileID]++
	f.repHints[fileID] = kindHint

	steps := f.reps[fileID]
	if len(steps) == 0 {
		return nil, nil
	}

	if n >= len(steps) {
		n = len(steps) - 1
	}

	return steps[n].reps, steps[n].err
}

func (f *fakeAPI) GetURL(_ context.Context, url string) (*http.Response, error) {
	n := 0

	for _, called := range f.urlCalls {
		if called == url {
			n++
		}
	}

	f.urlCalls = append(f.urlCalls, url)

	steps, ok := f.urls[url]
	if !ok || len(steps) == 0 {
		return nil, fmt.Errorf("fake: no script for URL %q", url)
	}

	if n >= len(steps) {
		n = len(steps) - 1
	}

	if steps[n].err != nil {
		return nil, steps[n].err
	}

	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(steps[n].body)),
	}, nil
}

// stubText scripts the whole happy path for one file: metadata, a ready
// representation, and the two-stage content fetch yielding text.
func (f *fakeAPI) stubText(fileID, name string, text string) {
	f.files[fileID] = boxapi.File{
		ID:        fileID,
		Name:      name,
		Size:      int64(len(text)),
		Extension: extOf(name),
	}
	f.stubRepresentation(fileID, text)
}

// stubRepresentation scripts a ready representation and its content,
// without touching file metadata.
func (f *fakeAPI) stubRepresentation(fileID, text string) {
	info := infoURL(fileID)
	f.reps[fileID] = []repsStep{{reps: []boxapi.Representation{{
		Kind:    string(KindForExtension(extOf(f.files[fileID].Name))),
		State:   boxapi.RepStateSuccess,
		InfoURL: info,
	}}}}
	f.urls[info] = []urlStep{{body: infoBody(fileID)}}
	f.urls[contentURL(fileID)] = []urlStep{{body: text}}
}

func infoURL(fileID string) string {
	return "https://dl.example/info/" + fileID
}

func contentURL(fileID string) string {
	return "https://dl.example/content/" + fileID + "/"
}

func infoBody(fileID string) string {
	return `{"content": {"url_template": "` + contentURL(fileID) + `{+asset_path}"}}`
}

func extOf(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return strings.ToLower(name[i+1:])
	}

	return ""
}

func fileEntry(id, name string) boxapi.Entry {
	return boxapi.Entry{ID: id, Type: boxapi.TypeFile, Name: name, Extension: extOf(name)}
}

func folderEntry(id, name string) boxapi.Entry {
	return boxapi.Entry{ID: id, Type: boxapi.TypeFolder, Name: name}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordSleep returns a sleep function that appends each requested
// delay to the given slice without waiting.
func recordSleep(delays *[]time.Duration) func(ctx context.Context, d time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)

		return nil
	}
}

// newTestLoader builds a Loader over the fake with instant, recorded
// sleeps shared between the empty-retry loop and the resolver.
func newTestLoader(api API, cfg Config) (*Loader, *[]time.Duration) {
	l := New(api, cfg, discardLogger())

	delays := &[]time.Duration{}
	l.sleep = recordSleep(delays)
	l.resolver.sleep = recordSleep(delays)

	return l, delays
}
