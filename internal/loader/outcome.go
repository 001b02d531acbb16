package loader

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/arikorhonen/boxtext/internal/boxapi"
)

// FailureKind classifies why text retrieval failed for one file.
// Failures are values, never errors that escape the pipeline — they
// render to a human-readable diagnostic at the Assembler boundary.
type FailureKind int

const (
	// FailureNone means the outcome carries text.
	FailureNone FailureKind = iota
	// FailureNoRepresentation — the requested kind is not available and
	// never will be (terminal).
	FailureNoRepresentation
	// FailureStillProcessing — polling exhausted while the server kept
	// reporting pending/processing.
	FailureStillProcessing
	// FailureExtractionFailed — the server reported a terminal error state.
	FailureExtractionFailed
	// FailureUnknownState — the server reported a state this engine does
	// not recognize.
	FailureUnknownState
	// FailureNoURL — the representation info carried no content URL template.
	FailureNoURL
	// FailureInvalidData — the representation info was not valid JSON.
	FailureInvalidData
	// FailureBadStatus — a non-2xx HTTP status during listing or fetch.
	FailureBadStatus
	// FailureAuth — 401/403 during listing or fetch, kept separate from
	// FailureBadStatus for diagnostic clarity.
	FailureAuth
	// FailureNetwork — a transport-level error.
	FailureNetwork
	// FailureMetadata — the file metadata lookup itself failed.
	FailureMetadata
)

// Outcome is the tagged result of retrieving text for one file: either
// Text (Failure == FailureNone) or a typed failure with detail.
type Outcome struct {
	Text    string
	Failure FailureKind
	Detail  string
}

// OK reports whether the outcome carries successfully retrieved text.
func (o Outcome) OK() bool { return o.Failure == FailureNone }

// textOutcome wraps retrieved text.
func textOutcome(text string) Outcome {
	return Outcome{Text: text}
}

// failure builds a failed outcome.
func failure(kind FailureKind, detail string) Outcome {
	return Outcome{Failure: kind, Detail: detail}
}

// Render converts the outcome to the string placed in a Document's
// content: the text itself, or a self-describing diagnostic.
func (o Outcome) Render() string {
	switch o.Failure {
	case FailureNone:
		return o.Text
	case FailureNoRepresentation:
		return "no representation available"
	case FailureStillProcessing:
		return "representation still processing, try again later"
	case FailureExtractionFailed:
		if o.Detail != "" {
			return "extraction failed: " + o.Detail
		}

		return "extraction failed"
	case FailureUnknownState:
		return "unknown representation state: " + o.Detail
	case FailureNoURL:
		return "no representation URL"
	case FailureInvalidData:
		return "invalid representation data format"
	case FailureBadStatus:
		return "error retrieving representation: " + o.Detail
	case FailureAuth:
		return "authentication failed: " + o.Detail
	case FailureNetwork:
		return "network error retrieving representation: " + o.Detail
	case FailureMetadata:
		return "error fetching file metadata: " + o.Detail
	default:
		return "unknown failure"
	}
}

// outcomeFromError converts an API call error into a failed outcome.
// 401/403 are classified as auth failures; other HTTP errors carry
// their status code; everything else is a transport failure.
func outcomeFromError(op string, err error) Outcome {
	var apiErr *boxapi.APIError
	if errors.As(err, &apiErr) {
		detail := fmt.Sprintf("HTTP %d %s", apiErr.StatusCode, op)

		if apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden {
			return failure(FailureAuth, detail)
		}

		return failure(FailureBadStatus, detail)
	}

	return failure(FailureNetwork, fmt.Sprintf("%s: %v", op, err))
}
