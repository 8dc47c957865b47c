package userinteraction

import (
	"context"
	"errors"

	"ui-operator/internal/application/port/output"
	"ui-operator/internal/domain/entity"
)

var _ output.UserInteractionPort = (*Channel)(nil)

var ErrNoAnswer = errors.New("no scripted answer left")

// Question is one pending ask_user request. Exactly one of Answer or Reject
// must be called.
type Question struct {
	Text  string
	reply chan answer
}

type answer struct {
	text string
	err  error
}

func (q Question) Answer(text string) { q.reply <- answer{text: text} }

func (q Question) Reject(err error) { q.reply <- answer{err: err} }

// Channel hands questions to whoever ranges over Questions. It is the
// non-terminal interaction port, used by tests and scripted runs.
type Channel struct {
	questions chan Question
}

func NewChannel() *Channel {
	return &Channel{questions: make(chan Question)}
}

func (c *Channel) Questions() <-chan Question {
	return c.questions
}

func (c *Channel) AskQuestion(ctx context.Context, question string) (string, error) {
	q := Question{Text: question, reply: make(chan answer, 1)}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case c.questions <- q:
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case a := <-q.reply:
		return a.text, a.err
	}
}

func (c *Channel) ShowStep(ctx context.Context, step int, snapshot entity.Snapshot) {}

func (c *Channel) ShowAction(ctx context.Context, action entity.Action) {}

func (c *Channel) ShowActionError(ctx context.Context, action entity.Action, err error) {}

// Scripted answers questions from answers in order until ctx is done. Once the
// list is exhausted every further question is rejected with ErrNoAnswer.
func Scripted(ctx context.Context, answers []string) *Channel {
	c := NewChannel()
	go func() {
		next := 0
		for {
			select {
			case <-ctx.Done():
				return
			case q := <-c.questions:
				if next >= len(answers) {
					q.Reject(ErrNoAnswer)
					continue
				}
				q.Answer(answers[next])
				next++
			}
		}
	}()
	return c
}
