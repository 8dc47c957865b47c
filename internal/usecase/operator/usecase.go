package operator

import (
	"context"
	"fmt"
	"time"

	"ui-operator/internal/application/port/input"
	"ui-operator/internal/application/port/output"
	"ui-operator/internal/application/service"
	"ui-operator/internal/domain/entity"

	"github.com/google/uuid"
)

var _ input.TaskExecutor = (*UseCase)(nil)

const artifactTimeout = 15 * time.Second

type Config struct {
	StartURL     string
	SystemPrompt string
	// AskUserInput and AskUserSubmit receive the answer to an ask_user action.
	AskUserInput  string
	AskUserSubmit string
	// MaxSteps of 0 means unlimited.
	MaxSteps int
}

type Deps struct {
	Sessions        *service.SessionManager
	Bootstrap       *service.Bootstrap
	Extractor       *service.Extractor
	Planner         output.Planner
	Dispatcher      *service.Dispatcher
	UserInteraction output.UserInteractionPort
	// Artifacts is optional.
	Artifacts output.ArtifactPort
	Logger    output.LoggerPort
}

// UseCase runs the observe, plan, act loop against one browser session.
type UseCase struct {
	cfg  Config
	deps Deps
}

func New(cfg Config, deps Deps) *UseCase {
	return &UseCase{cfg: cfg, deps: deps}
}

func (uc *UseCase) Orchestrate(ctx context.Context, goal string) (string, error) {
	res, err := uc.Execute(ctx, goal)
	if err != nil {
		return "", err
	}
	return res.FinalAnswer, nil
}

func (uc *UseCase) Execute(ctx context.Context, goal string) (*input.ExecuteResult, error) {
	r := &run{
		uc:     uc,
		id:     uuid.NewString(),
		logger: uc.deps.Logger,
	}
	r.logger = r.logger.WithField("run_id", r.id)
	r.logger.Info("Run started", "goal", goal)

	sess, err := uc.deps.Sessions.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire session: %w", err)
	}
	defer sess.Release(ctx)
	r.page = sess.Page

	if err := r.page.Navigate(ctx, uc.cfg.StartURL); err != nil {
		return nil, r.fail(ctx, 0, fmt.Errorf("open start page %s: %w", uc.cfg.StartURL, err))
	}

	boot, err := uc.deps.Bootstrap.Run(ctx, r.page)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	r.logger.Info("Bootstrap finished", "state", boot.State, "trace", boot.Trace)

	payload, steps, err := r.loop(ctx, entity.NewConversationHistory(uc.cfg.SystemPrompt, goal))
	if err != nil {
		return nil, err
	}

	r.logger.Info("Run finished", "steps", steps)
	return &input.ExecuteResult{
		RunID:        r.id,
		FinalAnswer:  payload,
		Steps:        steps,
		Reachability: boot.State,
	}, nil
}

// run is the state of one Execute call.
type run struct {
	uc     *UseCase
	id     string
	page   output.PagePort
	logger output.LoggerPort
}

func (r *run) loop(ctx context.Context, history *entity.ConversationHistory) (string, int, error) {
	deps := r.uc.deps

	for step := 1; ; step++ {
		if limit := r.uc.cfg.MaxSteps; limit > 0 && step > limit {
			return "", step - 1, fmt.Errorf("%w: %d steps", entity.ErrStepLimit, limit)
		}
		log := r.logger.WithField("step", step)

		snap, err := deps.Extractor.Snapshot(ctx, r.page)
		if err != nil {
			return "", step, fmt.Errorf("step %d: snapshot: %w", step, err)
		}
		deps.UserInteraction.ShowStep(ctx, step, snap)
		history.AppendSnapshot(snap)

		action, err := deps.Planner.Propose(ctx, history.Messages())
		if err != nil {
			return "", step, r.fail(ctx, step, err)
		}
		deps.UserInteraction.ShowAction(ctx, action)
		log.Info("Action", "kind", action.Kind())

		switch a := action.(type) {
		case entity.DoneAction:
			return a.Payload, step, nil

		case entity.AskUserAction:
			if err := r.askUser(ctx, a); err != nil {
				deps.UserInteraction.ShowActionError(ctx, action, err)
				return "", step, r.fail(ctx, step, err)
			}

		default:
			if _, err := deps.Dispatcher.Execute(ctx, r.page, action); err != nil {
				deps.UserInteraction.ShowActionError(ctx, action, err)
				return "", step, r.fail(ctx, step, err)
			}
			raw, err := entity.MarshalAction(action)
			if err != nil {
				return "", step, r.fail(ctx, step, err)
			}
			history.Append(entity.Message{
				Role:    entity.RoleAssistant,
				Name:    entity.OriginTool,
				Content: string(raw),
			})
		}
	}
}

// askUser types the answer into the app's own input and submits it. The
// exchange is not recorded in history; the next snapshot shows its effect.
func (r *run) askUser(ctx context.Context, a entity.AskUserAction) error {
	answer, err := r.uc.deps.UserInteraction.AskQuestion(ctx, a.Question)
	if err != nil {
		return fmt.Errorf("ask user: %w", err)
	}
	if err := r.page.Fill(ctx, r.uc.cfg.AskUserInput, answer); err != nil {
		return fmt.Errorf("inject answer: %w", err)
	}
	if err := r.page.Click(ctx, r.uc.cfg.AskUserSubmit); err != nil {
		return fmt.Errorf("submit answer: %w", err)
	}
	return nil
}

func (r *run) fail(ctx context.Context, step int, err error) error {
	err = fmt.Errorf("step %d: %w", step, err)
	r.logger.Error("Run aborted", "error", err)

	if r.uc.deps.Artifacts == nil || r.page == nil {
		return err
	}
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), artifactTimeout)
	defer cancel()
	path, aerr := r.uc.deps.Artifacts.CaptureFailure(actx, r.id, r.page)
	if aerr != nil {
		r.logger.Warn("Failure artifact not captured", "error", aerr)
		return err
	}
	r.logger.Info("Failure artifact saved", "path", path)
	return err
}
