package output

import (
	"context"

	"ui-operator/internal/domain/entity"
)

type UserInteractionPort interface {
	// AskQuestion blocks until an answer arrives or ctx is done.
	AskQuestion(ctx context.Context, question string) (string, error)

	ShowStep(ctx context.Context, step int, snapshot entity.Snapshot)
	ShowAction(ctx context.Context, action entity.Action)
	ShowActionError(ctx context.Context, action entity.Action, err error)
}

// ArtifactPort stores diagnostics for failed runs.
type ArtifactPort interface {
	CaptureFailure(ctx context.Context, runID string, page PagePort) (string, error)
}
