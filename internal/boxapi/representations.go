package boxapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
)

// repHintsHeader carries the representation kinds the server should
// generate or report on. Box expects kinds in square brackets,
// e.g. "[extracted_text]".
const repHintsHeader = "x-rep-hints"

// representationsEnvelope mirrors the representations field of a file
// response. The listing arrives nested under the file object, not as a
// standalone resource.
type representationsEnvelope struct {
	Representations *struct {
		Entries []representationResponse `json:"entries"`
	} `json:"representations"`
}

type representationResponse struct {
	Representation string `json:"representation"`
	Status         *struct {
		State   string `json:"state"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"status"`
	Info *struct {
		URL string `json:"url"`
	} `json:"info"`
}

func (r *representationResponse) toRepresentation() Representation {
	rep := Representation{Kind: r.Representation}

	if r.Status != nil {
		rep.State = r.Status.State
		rep.StatusMessage = r.Status.Message
	}

	if r.Info != nil {
		rep.InfoURL = r.Info.URL
	}

	return rep
}

// ListRepresentations returns the representation entries currently
// reported for a file, hinting the server toward the given kind. A file
// with no representations field at all yields an empty slice, not an
// error — absence is a domain state the caller interprets.
func (c *Client) ListRepresentations(ctx context.Context, fileID, kindHint string) ([]Representation, error) {
	c.logger.Debug("listing representations",
		slog.String("file_id", fileID),
		slog.String("hint", kindHint),
	)

	path := fmt.Sprintf("/files/%s?fields=representations", url.PathEscape(fileID))

	headers := http.Header{}
	if kindHint != "" {
		headers.Set(repHintsHeader, "["+kindHint+"]")
	}

	resp, err := c.Do(ctx, http.MethodGet, path, headers)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env representationsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("boxapi: decoding representations response: %w", err)
	}

	if env.Representations == nil {
		return nil, nil
	}

	reps := make([]Representation, 0, len(env.Representations.Entries))
	for i := range env.Representations.Entries {
		reps = append(reps, env.Representations.Entries[i].toRepresentation())
	}

	return reps, nil
}
