package service

import (
	"context"
	"errors"
	"fmt"

	"ui-operator/internal/application/port/output"
	"ui-operator/internal/domain/entity"
)

// Dispatcher executes one validated action against the live page.
type Dispatcher struct {
	policy *NavigationPolicy
	logger output.LoggerPort
}

func NewDispatcher(policy *NavigationPolicy, logger output.LoggerPort) *Dispatcher {
	return &Dispatcher{policy: policy, logger: logger}
}

func (d *Dispatcher) Execute(ctx context.Context, page output.PagePort, action entity.Action) (string, error) {
	if action == nil {
		return "", fmt.Errorf("%w: nil action", entity.ErrInvalidAction)
	}
	return action.Accept(&dispatch{ctx: ctx, page: page, d: d})
}

// dispatch binds one Execute call to the visitor methods.
type dispatch struct {
	ctx  context.Context
	page output.PagePort
	d    *Dispatcher
}

var _ entity.ActionVisitor = (*dispatch)(nil)

func (x *dispatch) VisitNavigate(a entity.NavigateAction) (string, error) {
	if err := x.d.policy.Check(a.URL); err != nil {
		x.d.logger.Error("Navigation blocked", "url", a.URL, "error", err)
		return "", err
	}
	if err := x.page.Navigate(x.ctx, a.URL); err != nil {
		return "", fmt.Errorf("navigate %s: %w", a.URL, err)
	}
	return "", nil
}

func (x *dispatch) VisitClick(a entity.ClickAction) (string, error) {
	if err := x.page.Click(x.ctx, a.Selector); err != nil {
		return "", fmt.Errorf("click %s: %w", a.Selector, err)
	}
	return "", nil
}

func (x *dispatch) VisitType(a entity.TypeAction) (string, error) {
	if err := x.page.Fill(x.ctx, a.Selector, a.Text); err != nil {
		return "", fmt.Errorf("type into %s: %w", a.Selector, err)
	}
	return "", nil
}

func (x *dispatch) VisitWaitFor(a entity.WaitForAction) (string, error) {
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = entity.DefaultWaitForTimeout
	}

	err := x.page.WaitVisible(x.ctx, a.Selector, timeout)
	if errors.Is(err, entity.ErrWaitTimeout) {
		x.d.logger.Warn("wait_for timed out, continuing",
			"selector", a.Selector,
			"timeout", timeout,
			"recovered", "wait_timeout")
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("wait for %s: %w", a.Selector, err)
	}
	return "", nil
}

func (x *dispatch) VisitAskUser(a entity.AskUserAction) (string, error) {
	return entity.AskUserSentinel + a.Question, nil
}

func (x *dispatch) VisitDone(a entity.DoneAction) (string, error) {
	return a.Payload, nil
}
