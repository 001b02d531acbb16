package loader

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arikorhonen/boxtext/internal/boxapi"
)

func newTestWalker(api API) *Walker {
	return &Walker{api: api, cfg: DefaultConfig(), logger: discardLogger()}
}

func makeFiles(prefix string, n int) []boxapi.Entry {
	entries := make([]boxapi.Entry, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%s-%d", prefix, i)
		entries = append(entries, fileEntry(id, id+".txt"))
	}

	return entries
}

func entryIDs(entries []boxapi.Entry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}

	return ids
}

func TestWalk_PageBoundaries(t *testing.T) {
	tests := []struct {
		name          string
		count         int
		expectedCalls int
	}{
		// A page equal to the page size cannot prove exhaustion; it
		// forces one confirming fetch.
		{"exactly one full page", 100, 2},
		{"one and a half pages", 150, 2},
		{"just under a page", 99, 1},
		{"empty folder", 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			api.folders["root"] = makeFiles("f", tt.count)

			w := newTestWalker(api)
			entries := w.List(context.Background(), "root", false)

			assert.Len(t, entries, tt.count)
			assert.Equal(t, tt.expectedCalls, api.folderCalls["root"])
		})
	}
}

func TestWalk_NonRecursiveDropsFolders(t *testing.T) {
	api := newFakeAPI()
	api.folders["root"] = []boxapi.Entry{
		fileEntry("a", "a.txt"),
		folderEntry("sub", "sub"),
		fileEntry("b", "b.txt"),
	}
	api.folders["sub"] = []boxapi.Entry{fileEntry("s1", "s1.txt")}

	w := newTestWalker(api)
	entries := w.List(context.Background(), "root", false)

	assert.Equal(t, []string{"a", "b"}, entryIDs(entries))
	assert.Zero(t, api.folderCalls["sub"])
}

func TestWalk_RecursiveDepthFirstPreOrder(t *testing.T) {
	api := newFakeAPI()
	api.folders["root"] = []boxapi.Entry{
		fileEntry("a", "a.txt"),
		folderEntry("sub", "sub"),
		fileEntry("b", "b.txt"),
	}
	api.folders["sub"] = []boxapi.Entry{
		fileEntry("s1", "s1.txt"),
		folderEntry("deep", "deep"),
	}
	api.folders["deep"] = []boxapi.Entry{fileEntry("d1", "d1.txt")}

	w := newTestWalker(api)
	entries := w.List(context.Background(), "root", true)

	// Subfolder contents are spliced in at the folder's position, before
	// the remainder of the parent page.
	assert.Equal(t, []string{"a", "s1", "d1", "b"}, entryIDs(entries))
}

func TestWalk_WebLinksSkipped(t *testing.T) {
	api := newFakeAPI()
	api.folders["root"] = []boxapi.Entry{
		fileEntry("a", "a.txt"),
		{ID: "w1", Type: boxapi.TypeWebLink, Name: "bookmark"},
		fileEntry("b", "b.txt"),
	}

	w := newTestWalker(api)
	entries := w.List(context.Background(), "root", true)

	assert.Equal(t, []string{"a", "b"}, entryIDs(entries))
}

func TestWalk_SubtreeFailureIsolated(t *testing.T) {
	api := newFakeAPI()
	api.folders["root"] = []boxapi.Entry{
		fileEntry("a", "a.txt"),
		folderEntry("broken", "broken"),
		fileEntry("b", "b.txt"),
	}
	api.folderErrs["broken"] = errors.New("listing failed")

	w := newTestWalker(api)
	entries := w.List(context.Background(), "root", true)

	// The failed subtree is abandoned; siblings still come through.
	assert.Equal(t, []string{"a", "b"}, entryIDs(entries))
}

func TestWalk_RootFailureYieldsNothing(t *testing.T) {
	api := newFakeAPI()
	api.folderErrs["root"] = errors.New("listing failed")

	w := newTestWalker(api)
	entries := w.List(context.Background(), "root", true)

	assert.Empty(t, entries)
}

func TestWalk_AbandonedPullStopsFetching(t *testing.T) {
	api := newFakeAPI()
	api.folders["root"] = []boxapi.Entry{
		fileEntry("a", "a.txt"),
		folderEntry("sub", "sub"),
	}
	api.folders["sub"] = []boxapi.Entry{fileEntry("s1", "s1.txt")}

	w := newTestWalker(api)

	for entry := range w.Walk(context.Background(), "root", true) {
		require.Equal(t, "a", entry.ID)

		break
	}

	// Stopping after the first file means the subfolder is never listed.
	assert.Equal(t, 1, api.folderCalls["root"])
	assert.Zero(t, api.folderCalls["sub"])
}

func TestWalk_PaginationWithinSubfolder(t *testing.T) {
	api := newFakeAPI()
	api.folders["root"] = []boxapi.Entry{folderEntry("sub", "sub")}
	api.folders["sub"] = makeFiles("s", 150)

	w := newTestWalker(api)
	entries := w.List(context.Background(), "root", true)

	assert.Len(t, entries, 150)
	assert.Equal(t, 2, api.folderCalls["sub"])
}
