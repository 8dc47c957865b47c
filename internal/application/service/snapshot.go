package service

import (
	"context"
	"errors"
	"time"

	"ui-operator/internal/application/port/output"
	"ui-operator/internal/domain/entity"
)

const (
	DefaultAnswerSelector  = "div.MarkdownProse"
	DefaultObservationWait = 2 * time.Second
)

type ExtractorConfig struct {
	// AnswerSelector marks the region holding the final answer.
	AnswerSelector  string
	ObservationWait time.Duration
	MaxChars        int
}

func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		AnswerSelector:  DefaultAnswerSelector,
		ObservationWait: DefaultObservationWait,
		MaxChars:        entity.DefaultSnapshotMaxChars,
	}
}

// Extractor turns live page state into a bounded text snapshot.
type Extractor struct {
	cfg    ExtractorConfig
	logger output.LoggerPort
}

func NewExtractor(cfg ExtractorConfig, logger output.LoggerPort) *Extractor {
	if cfg.AnswerSelector == "" {
		cfg.AnswerSelector = DefaultAnswerSelector
	}
	if cfg.ObservationWait <= 0 {
		cfg.ObservationWait = DefaultObservationWait
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = entity.DefaultSnapshotMaxChars
	}
	return &Extractor{cfg: cfg, logger: logger}
}

// Snapshot prefers the answer region and falls back to the whole body while that
// region does not exist yet. The fallback is the normal loading-state path. Only a
// cancelled ctx is returned as an error.
func (e *Extractor) Snapshot(ctx context.Context, page output.PagePort) (entity.Snapshot, error) {
	text, err := e.answerText(ctx, page)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		e.logger.Debug("Answer region not visible, reading body",
			"selector", e.cfg.AnswerSelector,
			"recovered", "observation_timeout",
			"reason", err)

		text, err = page.InnerText(ctx, "body")
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			e.logger.Warn("Body text unavailable, snapshot is empty", "error", err)
			text = ""
		}
	}

	return entity.NewSnapshot(text, e.cfg.MaxChars), nil
}

func (e *Extractor) answerText(ctx context.Context, page output.PagePort) (string, error) {
	if err := page.WaitVisible(ctx, e.cfg.AnswerSelector, e.cfg.ObservationWait); err != nil {
		if errors.Is(err, entity.ErrWaitTimeout) {
			return "", entity.ErrObservationTimeout
		}
		return "", err
	}
	return page.InnerText(ctx, e.cfg.AnswerSelector)
}
