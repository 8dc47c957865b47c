package entity

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

type ActionKind string

const (
	ActionNavigate ActionKind = "navigate"
	ActionClick    ActionKind = "click"
	ActionType     ActionKind = "type"
	ActionWaitFor  ActionKind = "wait_for"
	ActionAskUser  ActionKind = "ask_user"
	ActionDone     ActionKind = "done"
)

// ActionKinds lists the closed set in schema order.
var ActionKinds = []ActionKind{
	ActionNavigate,
	ActionClick,
	ActionType,
	ActionWaitFor,
	ActionAskUser,
	ActionDone,
}

const DefaultWaitForTimeout = 10 * time.Second

// AskUserSentinel prefixes the dispatcher result of an ask_user action.
const AskUserSentinel = "_ASK_USER_::"

// Action is one planner decision. The set of implementations is closed: the
// unexported marker keeps other packages from adding variants, and ActionVisitor
// forces every consumer to handle each one.
type Action interface {
	Kind() ActionKind
	Accept(v ActionVisitor) (string, error)
	isAction()
}

type ActionVisitor interface {
	VisitNavigate(a NavigateAction) (string, error)
	VisitClick(a ClickAction) (string, error)
	VisitType(a TypeAction) (string, error)
	VisitWaitFor(a WaitForAction) (string, error)
	VisitAskUser(a AskUserAction) (string, error)
	VisitDone(a DoneAction) (string, error)
}

type NavigateAction struct {
	URL string
}

type ClickAction struct {
	Selector string
}

// TypeAction replaces the field content. It never submits.
type TypeAction struct {
	Selector string
	Text     string
}

type WaitForAction struct {
	Selector string
	Timeout  time.Duration
}

type AskUserAction struct {
	Question string
}

type DoneAction struct {
	Payload string
}

func (NavigateAction) Kind() ActionKind { return ActionNavigate }
func (ClickAction) Kind() ActionKind    { return ActionClick }
func (TypeAction) Kind() ActionKind     { return ActionType }
func (WaitForAction) Kind() ActionKind  { return ActionWaitFor }
func (AskUserAction) Kind() ActionKind  { return ActionAskUser }
func (DoneAction) Kind() ActionKind     { return ActionDone }

func (a NavigateAction) Accept(v ActionVisitor) (string, error) { return v.VisitNavigate(a) }
func (a ClickAction) Accept(v ActionVisitor) (string, error)    { return v.VisitClick(a) }
func (a TypeAction) Accept(v ActionVisitor) (string, error)     { return v.VisitType(a) }
func (a WaitForAction) Accept(v ActionVisitor) (string, error)  { return v.VisitWaitFor(a) }
func (a AskUserAction) Accept(v ActionVisitor) (string, error)  { return v.VisitAskUser(a) }
func (a DoneAction) Accept(v ActionVisitor) (string, error)     { return v.VisitDone(a) }

func (NavigateAction) isAction() {}
func (ClickAction) isAction()    {}
func (TypeAction) isAction()     {}
func (WaitForAction) isAction()  {}
func (AskUserAction) isAction()  {}
func (DoneAction) isAction()     {}

// actionWire is the flat object exchanged with the planner.
type actionWire struct {
	Action   *string `json:"action"`
	URL      *string `json:"url,omitempty"`
	Selector *string `json:"selector,omitempty"`
	Text     *string `json:"text,omitempty"`
	Timeout  *int64  `json:"timeout,omitempty"`
	Question *string `json:"question,omitempty"`
	Payload  *string `json:"payload,omitempty"`
}

// ParseAction decodes one planner decision. Unknown fields, a missing or unknown
// action tag, and a missing per-variant field all fail with ErrDecisionSchema.
func ParseAction(data []byte) (Action, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var w actionWire
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecisionSchema, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after action object", ErrDecisionSchema)
	}

	if w.Action == nil {
		return nil, fmt.Errorf("%w: missing required field \"action\"", ErrDecisionSchema)
	}

	kind := ActionKind(*w.Action)
	switch kind {
	case ActionNavigate:
		if err := requireNonEmpty(kind, "url", w.URL); err != nil {
			return nil, err
		}
		return NavigateAction{URL: *w.URL}, nil

	case ActionClick:
		if err := requireNonEmpty(kind, "selector", w.Selector); err != nil {
			return nil, err
		}
		return ClickAction{Selector: *w.Selector}, nil

	case ActionType:
		if err := requireNonEmpty(kind, "selector", w.Selector); err != nil {
			return nil, err
		}
		if w.Text == nil {
			return nil, fmt.Errorf("%w: %s requires \"text\"", ErrDecisionSchema, kind)
		}
		return TypeAction{Selector: *w.Selector, Text: *w.Text}, nil

	case ActionWaitFor:
		if err := requireNonEmpty(kind, "selector", w.Selector); err != nil {
			return nil, err
		}
		timeout := DefaultWaitForTimeout
		if w.Timeout != nil {
			switch {
			case *w.Timeout < 0:
				return nil, fmt.Errorf("%w: %s timeout must not be negative", ErrDecisionSchema, kind)
			case *w.Timeout > 0:
				timeout = time.Duration(*w.Timeout) * time.Millisecond
			}
		}
		return WaitForAction{Selector: *w.Selector, Timeout: timeout}, nil

	case ActionAskUser:
		if err := requireNonEmpty(kind, "question", w.Question); err != nil {
			return nil, err
		}
		return AskUserAction{Question: *w.Question}, nil

	case ActionDone:
		var payload string
		if w.Payload != nil {
			payload = *w.Payload
		}
		return DoneAction{Payload: payload}, nil
	}

	return nil, fmt.Errorf("%w: unknown action %q", ErrDecisionSchema, *w.Action)
}

func requireNonEmpty(kind ActionKind, field string, v *string) error {
	if v == nil || *v == "" {
		return fmt.Errorf("%w: %s requires %q", ErrDecisionSchema, kind, field)
	}
	return nil
}

// MarshalAction renders an action in the same flat form ParseAction accepts.
func MarshalAction(a Action) ([]byte, error) {
	if a == nil {
		return nil, ErrInvalidAction
	}

	kind := string(a.Kind())
	w := actionWire{Action: &kind}

	switch v := a.(type) {
	case NavigateAction:
		w.URL = &v.URL
	case ClickAction:
		w.Selector = &v.Selector
	case TypeAction:
		w.Selector = &v.Selector
		w.Text = &v.Text
	case WaitForAction:
		ms := v.Timeout.Milliseconds()
		w.Selector = &v.Selector
		w.Timeout = &ms
	case AskUserAction:
		w.Question = &v.Question
	case DoneAction:
		if v.Payload != "" {
			w.Payload = &v.Payload
		}
	}

	return json.Marshal(w)
}

// ActionSchema is the JSON Schema declared to the planner for a single action.
func ActionSchema() map[string]interface{} {
	kinds := make([]string, 0, len(ActionKinds))
	for _, k := range ActionKinds {
		kinds = append(kinds, string(k))
	}

	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"action": map[string]interface{}{
				"type":        "string",
				"enum":        kinds,
				"description": "Which single UI action to perform next",
			},
			"url": map[string]interface{}{
				"type":        "string",
				"description": "navigate: absolute URL on the allowed origin",
			},
			"selector": map[string]interface{}{
				"type":        "string",
				"description": "click / type / wait_for: CSS selector, or XPath starting with /",
			},
			"text": map[string]interface{}{
				"type":        "string",
				"description": "type: text that replaces the field content (no Enter is sent)",
			},
			"timeout": map[string]interface{}{
				"type":        "integer",
				"description": "wait_for: milliseconds to wait for the selector to become visible (default 10000)",
			},
			"question": map[string]interface{}{
				"type":        "string",
				"description": "ask_user: question for the human operator",
			},
			"payload": map[string]interface{}{
				"type":        "string",
				"description": "done: final answer returned to the caller",
			},
		},
		"required":             []string{"action"},
		"additionalProperties": false,
	}
}
