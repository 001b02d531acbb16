package loader

import (
	"context"
	"log/slog"
	"time"

	"github.com/arikorhonen/boxtext/internal/boxapi"
)

// Descriptor identifies a ready representation. Ephemeral — discarded
// once text is obtained or resolution gives up.
type Descriptor struct {
	Kind    Kind
	InfoURL string
}

// Resolver drives the readiness state machine for one file's chosen
// representation kind. Readiness is determined purely from the
// freshest listing call; earlier state is discarded on each poll.
type Resolver struct {
	api    API
	cfg    Config
	logger *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// Resolve lists representations for the file and polls until the
// chosen kind is ready or a terminal state is reached. On success the
// descriptor is non-nil; on failure it is nil and the outcome carries
// the typed diagnostic. Failures never abort a batch.
func (r *Resolver) Resolve(ctx context.Context, fileID string, kind Kind) (*Descriptor, Outcome) {
	attempt := 0

	for {
		reps, err := r.api.ListRepresentations(ctx, fileID, kind.String())
		if err != nil {
			r.logger.Warn("representation listing failed",
				slog.String("file_id", fileID),
				slog.String("kind", kind.String()),
				slog.String("error", err.Error()),
			)

			return nil, outcomeFromError("listing representations", err)
		}

		rep, found := pickRepresentation(reps, kind)
		if !found {
			return nil, failure(FailureNoRepresentation, "")
		}

		switch rep.State {
		case boxapi.RepStateSuccess, boxapi.RepStateViewable:
			return &Descriptor{Kind: kind, InfoURL: rep.InfoURL}, Outcome{}

		case "":
			// No status object, but an info URL means the representation
			// is already generated.
			if rep.InfoURL != "" {
				return &Descriptor{Kind: kind, InfoURL: rep.InfoURL}, Outcome{}
			}

			return nil, failure(FailureUnknownState, "(absent)")

		case boxapi.RepStatePending, boxapi.RepStateProcessing:
			if attempt >= r.cfg.StatusRetries {
				r.logger.Info("representation not ready after retries",
					slog.String("file_id", fileID),
					slog.String("kind", kind.String()),
					slog.Int("attempts", attempt+1),
				)

				return nil, failure(FailureStillProcessing, rep.State)
			}

			attempt++

			delay := r.cfg.StatusRetryDelay * time.Duration(attempt)
			r.logger.Debug("representation not ready, polling again",
				slog.String("file_id", fileID),
				slog.String("state", rep.State),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay),
			)

			if sleepErr := r.sleep(ctx, delay); sleepErr != nil {
				return nil, failure(FailureNetwork, "canceled while polling: "+sleepErr.Error())
			}

		case boxapi.RepStateNone:
			return nil, failure(FailureNoRepresentation, "")

		case boxapi.RepStateError:
			return nil, failure(FailureExtractionFailed, rep.StatusMessage)

		default:
			return nil, failure(FailureUnknownState, rep.State)
		}
	}
}

// pickRepresentation finds the entry matching the requested kind.
func pickRepresentation(reps []boxapi.Representation, kind Kind) (boxapi.Representation, bool) {
	for _, rep := range reps {
		if rep.Kind == kind.String() {
			return rep, true
		}
	}

	return boxapi.Representation{}, false
}
