package input

import (
	"context"

	"ui-operator/internal/domain/entity"
)

type ExecuteResult struct {
	RunID        string
	FinalAnswer  string
	Steps        int
	Reachability entity.ReachabilityState
}

type TaskExecutor interface {
	Execute(ctx context.Context, goal string) (*ExecuteResult, error)
	Orchestrate(ctx context.Context, goal string) (string, error)
}
