package loader

import "github.com/arikorhonen/boxtext/internal/boxapi"

// Assemble builds the output record for one file. Returns nil for
// image and video files — no record is emitted for known-binary types.
// Otherwise the Document always carries full metadata; the content is
// the outcome's text or its rendered diagnostic, truncated to limit
// characters when limit is positive.
func Assemble(f boxapi.File, outcome Outcome, limit int) *Document {
	if ShouldSkip(f.Extension) {
		return nil
	}

	content := outcome.Render()
	if limit > 0 {
		content = truncate(content, limit)
	}

	return &Document{
		Content:  content,
		Metadata: metadataFor(f),
	}
}

// truncate cuts s to at most limit characters (runes, not bytes) with
// no ellipsis. Rune-based so a multi-byte sequence is never split.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit])
}
