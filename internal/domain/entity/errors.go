package entity

import (
	"errors"
	"fmt"
)

var (
	ErrPolicyViolation    = errors.New("policy violation")
	ErrElementNotFound    = errors.New("element not found")
	ErrNotActionable      = errors.New("element not actionable")
	ErrObservationTimeout = errors.New("observation region did not appear")
	ErrWaitTimeout        = errors.New("wait timed out")
	ErrDecisionSchema     = errors.New("decision schema error")
	ErrInvalidAction      = errors.New("invalid action")
	ErrSessionTeardown    = errors.New("session teardown failed")
	ErrStepLimit          = errors.New("step limit reached")
)

// PolicyViolationError reports a navigation target outside the allowed origins.
type PolicyViolationError struct {
	URL    string
	Reason string
}

func (e *PolicyViolationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("blocked navigate to %s", e.URL)
	}
	return fmt.Sprintf("blocked navigate to %s: %s", e.URL, e.Reason)
}

func (e *PolicyViolationError) Unwrap() error {
	return ErrPolicyViolation
}
