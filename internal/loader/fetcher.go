package loader

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
)

// assetPathPlaceholder is the template variable Box embeds in
// representation content URLs. Text representations are a single
// asset, so it is substituted with the empty string.
const assetPathPlaceholder = "{+asset_path}"

// repInfoResponse mirrors the representation info document fetched
// from a descriptor's info URL.
type repInfoResponse struct {
	Content *struct {
		URLTemplate string `json:"url_template"`
	} `json:"content"`
}

// Fetcher turns a ready representation descriptor into final text via
// two-stage URL indirection: the info URL yields a content URL
// template, and the resolved content URL yields the text body.
type Fetcher struct {
	api    API
	logger *slog.Logger
}

// Fetch retrieves the text for a resolved representation. All failure
// modes surface as outcomes, never as errors thrown past this
// component.
func (f *Fetcher) Fetch(ctx context.Context, desc *Descriptor) Outcome {
	resp, err := f.api.GetURL(ctx, desc.InfoURL)
	if err != nil {
		return outcomeFromError("fetching representation info", err)
	}

	infoBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()

	if err != nil {
		return failure(FailureNetwork, "reading representation info: "+err.Error())
	}

	var info repInfoResponse
	if err := json.Unmarshal(infoBody, &info); err != nil {
		f.logger.Warn("representation info is not valid JSON",
			slog.String("kind", desc.Kind.String()),
			slog.String("error", err.Error()),
		)

		return failure(FailureInvalidData, "")
	}

	if info.Content == nil || info.Content.URLTemplate == "" {
		return failure(FailureNoURL, "")
	}

	contentURL := strings.ReplaceAll(info.Content.URLTemplate, assetPathPlaceholder, "")

	resp, err = f.api.GetURL(ctx, contentURL)
	if err != nil {
		return outcomeFromError("downloading representation content", err)
	}

	text, err := io.ReadAll(resp.Body)
	resp.Body.Close()

	if err != nil {
		return failure(FailureNetwork, "reading representation content: "+err.Error())
	}

	return textOutcome(string(text))
}
