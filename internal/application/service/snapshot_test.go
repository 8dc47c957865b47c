package service

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"ui-operator/internal/infrastructure/browser/fake"
	"ui-operator/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		AnswerSelector:  "div.answer",
		ObservationWait: 20 * time.Millisecond,
		MaxChars:        4000,
	}
}

func TestExtractor_AnswerRegionOnly(t *testing.T) {
	page := fake.NewPage("https://manus.im/app")
	page.Set("body", fake.Element{Text: "Navigation  Sidebar\n\nThe answer is 42."})
	page.Set("div.answer", fake.Element{Text: "  The answer\n\tis   42.  "})

	snap, err := NewExtractor(testExtractorConfig(), logger.NewNop()).Snapshot(context.Background(), page)

	require.NoError(t, err)
	assert.Equal(t, "The answer is 42.", snap.String())
}

func TestExtractor_FallsBackToBody(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	page := fake.NewPage("https://manus.im/app")
	page.Set("body", fake.Element{Text: "\n  Thinking…\n\n  step 1 of 3  "})

	snap, err := NewExtractor(testExtractorConfig(), logger.NewFromZap(zap.New(core))).Snapshot(context.Background(), page)

	require.NoError(t, err)
	assert.Equal(t, "Thinking… step 1 of 3", snap.String())
	assert.Equal(t, 1, logs.FilterField(zap.String("recovered", "observation_timeout")).Len())
}

func TestExtractor_HiddenRegionFallsBack(t *testing.T) {
	page := fake.NewPage("https://manus.im/app")
	page.Set("body", fake.Element{Text: "whole page"})
	page.Set("div.answer", fake.Element{Text: "not yet", Hidden: true})

	snap, err := NewExtractor(testExtractorConfig(), logger.NewNop()).Snapshot(context.Background(), page)

	require.NoError(t, err)
	assert.Equal(t, "whole page", snap.String())
}

func TestExtractor_NoBodyYieldsEmptySnapshot(t *testing.T) {
	snap, err := NewExtractor(testExtractorConfig(), logger.NewNop()).Snapshot(context.Background(), fake.NewPage(""))

	require.NoError(t, err)
	assert.Empty(t, snap.String())
}

func TestExtractor_BoundedAndCollapsed(t *testing.T) {
	page := fake.NewPage("https://manus.im/app")
	page.Set("body", fake.Element{Text: strings.Repeat("é  \n word\t", 2000)})

	snap, err := NewExtractor(testExtractorConfig(), logger.NewNop()).Snapshot(context.Background(), page)

	require.NoError(t, err)
	assert.LessOrEqual(t, utf8.RuneCountInString(snap.String()), 4000)
	assert.NotContains(t, snap.String(), "  ")
	assert.NotContains(t, snap.String(), "\n")
	assert.NotContains(t, snap.String(), "\t")
}

func TestExtractor_CancelledContext(t *testing.T) {
	page := fake.NewPage("https://manus.im/app")
	page.Set("body", fake.Element{Text: "x"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExtractor(testExtractorConfig(), logger.NewNop()).Snapshot(ctx, page)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewExtractor_FillsDefaults(t *testing.T) {
	e := NewExtractor(ExtractorConfig{}, logger.NewNop())

	assert.Equal(t, DefaultExtractorConfig(), e.cfg)
}
