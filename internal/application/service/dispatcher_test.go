package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ui-operator/internal/domain/entity"
	"ui-operator/internal/infrastructure/browser/fake"
	"ui-operator/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *observer.ObservedLogs) {
	t.Helper()
	policy, err := NewNavigationPolicy([]string{"https://manus.im"})
	require.NoError(t, err)
	core, logs := observer.New(zapcore.DebugLevel)
	return NewDispatcher(policy, logger.NewFromZap(zap.New(core))), logs
}

func TestDispatcher_NavigateOutsideOriginNeverTouchesBrowser(t *testing.T) {
	d, _ := newTestDispatcher(t)
	page := fake.NewPage("https://manus.im/app")

	for _, target := range []string{
		"https://manus.im.evil.example/login",
		"http://manus.im/",
		"https://example.com",
		"javascript:alert(1)",
		"/relative/path",
	} {
		_, err := d.Execute(context.Background(), page, entity.NavigateAction{URL: target})

		require.Error(t, err, target)
		assert.ErrorIs(t, err, entity.ErrPolicyViolation, target)
		var pv *entity.PolicyViolationError
		require.True(t, errors.As(err, &pv), target)
		assert.Equal(t, target, pv.URL)
	}
	assert.Empty(t, page.Calls())
	assert.Equal(t, "https://manus.im/app", page.CurrentURL())
}

func TestDispatcher_NavigateInOrigin(t *testing.T) {
	d, _ := newTestDispatcher(t)
	page := fake.NewPage("about:blank")

	out, err := d.Execute(context.Background(), page, entity.NavigateAction{URL: "https://manus.im/app/123"})

	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, []string{"navigate:https://manus.im/app/123"}, page.Calls())
	assert.Equal(t, "https://manus.im/app/123", page.CurrentURL())
}

func TestDispatcher_NavigateDriverErrorPropagates(t *testing.T) {
	d, _ := newTestDispatcher(t)
	page := fake.NewPage("about:blank")
	page.NavigateErr = errors.New("net::ERR_NAME_NOT_RESOLVED")

	_, err := d.Execute(context.Background(), page, entity.NavigateAction{URL: "https://manus.im/"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ERR_NAME_NOT_RESOLVED")
}

func TestDispatcher_ClickAndTypeFailuresPropagate(t *testing.T) {
	d, _ := newTestDispatcher(t)
	page := fake.NewPage("https://manus.im/")
	page.Set("#hidden", fake.Element{Hidden: true})

	_, err := d.Execute(context.Background(), page, entity.ClickAction{Selector: "#missing"})
	assert.ErrorIs(t, err, entity.ErrElementNotFound)

	_, err = d.Execute(context.Background(), page, entity.ClickAction{Selector: "#hidden"})
	assert.ErrorIs(t, err, entity.ErrNotActionable)

	_, err = d.Execute(context.Background(), page, entity.TypeAction{Selector: "#missing", Text: "x"})
	assert.ErrorIs(t, err, entity.ErrElementNotFound)
}

func TestDispatcher_TypeReplacesContent(t *testing.T) {
	d, _ := newTestDispatcher(t)
	page := fake.NewPage("https://manus.im/")
	page.Set("textarea", fake.Element{Value: "old draft"})

	_, err := d.Execute(context.Background(), page, entity.TypeAction{Selector: "textarea", Text: "hello"})

	require.NoError(t, err)
	el, _ := page.Element("textarea")
	assert.Equal(t, "hello", el.Value)
	assert.Equal(t, []string{"fill:textarea=hello"}, page.Calls())
}

func TestDispatcher_WaitForTimeoutIsSwallowed(t *testing.T) {
	d, logs := newTestDispatcher(t)
	page := fake.NewPage("https://manus.im/")

	start := time.Now()
	out, err := d.Execute(context.Background(), page, entity.WaitForAction{Selector: "#never", Timeout: 30 * time.Millisecond})

	require.NoError(t, err)
	assert.Empty(t, out)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	recovered := logs.FilterField(zap.String("recovered", "wait_timeout"))
	assert.Equal(t, 1, recovered.Len())
	assert.Equal(t, zapcore.WarnLevel, recovered.All()[0].Level)
}

func TestDispatcher_WaitForVisible(t *testing.T) {
	d, logs := newTestDispatcher(t)
	page := fake.NewPage("https://manus.im/")
	page.Set("#ready", fake.Element{})

	_, err := d.Execute(context.Background(), page, entity.WaitForAction{Selector: "#ready", Timeout: time.Second})

	require.NoError(t, err)
	assert.Zero(t, logs.FilterField(zap.String("recovered", "wait_timeout")).Len())
}

func TestDispatcher_WaitForCancelledContextPropagates(t *testing.T) {
	d, _ := newTestDispatcher(t)
	page := fake.NewPage("https://manus.im/")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Execute(ctx, page, entity.WaitForAction{Selector: "#never", Timeout: time.Second})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestDispatcher_AskUserAndDoneDoNotTouchBrowser(t *testing.T) {
	d, _ := newTestDispatcher(t)
	page := fake.NewPage("https://manus.im/")

	out, err := d.Execute(context.Background(), page, entity.AskUserAction{Question: "Which file?"})
	require.NoError(t, err)
	assert.Equal(t, "_ASK_USER_::Which file?", out)

	out, err = d.Execute(context.Background(), page, entity.DoneAction{Payload: "42"})
	require.NoError(t, err)
	assert.Equal(t, "42", out)

	assert.Empty(t, page.Calls())
}

func TestDispatcher_NilAction(t *testing.T) {
	d, _ := newTestDispatcher(t)

	_, err := d.Execute(context.Background(), fake.NewPage(""), nil)

	assert.ErrorIs(t, err, entity.ErrInvalidAction)
}
