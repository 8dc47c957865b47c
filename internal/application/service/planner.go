package service

import (
	"context"
	"fmt"

	"ui-operator/internal/application/port/output"
	"ui-operator/internal/domain/entity"
)

const (
	BrowserToolName        = "browser_tool"
	browserToolDescription = "DOM interactor for the target web application. Call it exactly once with the next action."
)

var _ output.Planner = (*ToolPlanner)(nil)

// ToolPlanner asks the decision endpoint for exactly one browser_tool call.
type ToolPlanner struct {
	llm    output.LLMPort
	logger output.LoggerPort
}

func NewToolPlanner(llm output.LLMPort, logger output.LoggerPort) *ToolPlanner {
	return &ToolPlanner{llm: llm, logger: logger}
}

func BrowserTool() entity.ToolDefinition {
	return entity.ToolDefinition{
		Name:        BrowserToolName,
		Description: browserToolDescription,
		Parameters:  entity.ActionSchema(),
	}
}

// Propose does not retry; a malformed proposal fails the step.
func (p *ToolPlanner) Propose(ctx context.Context, history []entity.Message) (entity.Action, error) {
	resp, err := p.llm.Chat(ctx, output.ChatRequest{
		Messages:    history,
		Tools:       []entity.ToolDefinition{BrowserTool()},
		Temperature: 0,
		ToolChoice:  BrowserToolName,
	})
	if err != nil {
		return nil, fmt.Errorf("propose action: %w", err)
	}

	calls := resp.Message.ToolCalls
	if len(calls) == 0 {
		return nil, fmt.Errorf("%w: response carried no tool call", entity.ErrDecisionSchema)
	}
	if len(calls) > 1 {
		p.logger.Warn("Multiple tool calls returned, using the first", "count", len(calls))
	}

	call := calls[0]
	if call.Name != "" && call.Name != BrowserToolName {
		return nil, fmt.Errorf("%w: unexpected tool %q", entity.ErrDecisionSchema, call.Name)
	}

	action, err := entity.ParseAction([]byte(call.Arguments))
	if err != nil {
		return nil, err
	}
	p.logger.Debug("Action proposed", "action", action.Kind(), "arguments", call.Arguments)
	return action, nil
}
