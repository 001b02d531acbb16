package loader

// Kind is the representation kind requested from Box for a file.
// Chosen once per file from its extension and immutable for the
// duration of that file's retrieval.
type Kind string

// Representation kinds this engine requests.
const (
	KindExtractedText Kind = "extracted_text"
	KindMarkdown      Kind = "markdown"
)

func (k Kind) String() string { return string(k) }

// markdownExtensions are the document formats Box renders better as
// markdown than as plain extracted text.
var markdownExtensions = map[string]struct{}{
	"docx":    {},
	"pptx":    {},
	"xls":     {},
	"xlsx":    {},
	"xlsm":    {},
	"gdoc":    {},
	"gslide":  {},
	"gslides": {},
	"gsheet":  {},
	"pdf":     {},
}

// KindForExtension selects the representation kind for a file
// extension (lowercase, no leading dot).
func KindForExtension(ext string) Kind {
	if _, ok := markdownExtensions[ext]; ok {
		return KindMarkdown
	}

	return KindExtractedText
}

// mediaExtensions identify image and video files. These are filtered
// out before any representation request is issued — no Document is
// emitted and no network cost is paid.
var mediaExtensions = map[string]struct{}{
	// images
	"png": {}, "jpg": {}, "jpeg": {}, "gif": {}, "bmp": {},
	"tif": {}, "tiff": {}, "svg": {}, "webp": {}, "heic": {},
	"heif": {}, "ico": {}, "psd": {},
	// videos
	"mp4": {}, "mov": {}, "avi": {}, "mkv": {}, "wmv": {},
	"flv": {}, "webm": {}, "m4v": {}, "mpg": {}, "mpeg": {},
	"3gp": {},
}

// ShouldSkip reports whether a file extension identifies an image or
// video type that never produces a Document.
func ShouldSkip(ext string) bool {
	_, ok := mediaExtensions[ext]

	return ok
}
