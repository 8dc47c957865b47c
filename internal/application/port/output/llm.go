package output

import (
	"context"

	"ui-operator/internal/domain/entity"
)

type LLMPort interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

type ChatRequest struct {
	Messages    []entity.Message
	Tools       []entity.ToolDefinition
	Temperature float32
	// ToolChoice forces a call to the named tool. Empty leaves the choice to the model.
	ToolChoice string
}

type ChatResponse struct {
	Message entity.Message
}

// Planner proposes exactly one action for the current history.
type Planner interface {
	Propose(ctx context.Context, history []entity.Message) (entity.Action, error)
}
