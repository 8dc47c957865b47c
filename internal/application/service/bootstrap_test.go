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
)

func testBootstrapConfig() BootstrapConfig {
	cfg := DefaultBootstrapConfig()
	cfg.PopupTimeout = 20 * time.Millisecond
	cfg.PasswordTimeout = 20 * time.Millisecond
	cfg.SettleDelay = time.Millisecond
	cfg.Email = "me@example.com"
	cfg.Password = "hunter2"
	return cfg
}

// oauthPopup builds a popup that completes login on the main page when the
// password is submitted.
func oauthPopup(cfg BootstrapConfig, main *fake.Page) *fake.Page {
	popup := fake.NewPage("https://accounts.google.com/")
	popup.Set(cfg.EmailField, fake.Element{})
	popup.Set(cfg.NextButton, fake.Element{})
	popup.OnClick[cfg.NextButton] = func(p *fake.Page) {
		if _, ok := p.Element(cfg.PasswordField); ok {
			main.Set(cfg.ReadyMarker, fake.Element{Text: "Run"})
			return
		}
		p.Set(cfg.PasswordField, fake.Element{})
	}
	return popup
}

func TestBootstrap_AlreadyReady(t *testing.T) {
	cfg := testBootstrapConfig()
	page := fake.NewPage("https://manus.im/app")
	page.Set(cfg.ReadyMarker, fake.Element{Text: "Run"})

	res, err := NewBootstrap(cfg, logger.NewNop()).Run(context.Background(), page)

	require.NoError(t, err)
	assert.Equal(t, entity.ReachabilityReady, res.State)
	assert.Equal(t, []entity.ReachabilityState{entity.ReachabilityStart, entity.ReachabilityReady}, res.Trace)
}

func TestBootstrap_SignUpVariantSwitchesToSignIn(t *testing.T) {
	cfg := testBootstrapConfig()
	page := fake.NewPage("https://manus.im/login")
	page.Set(cfg.SignInLink, fake.Element{})
	page.OnClick[cfg.SignInLink] = func(p *fake.Page) {
		p.Remove(cfg.SignInLink)
		p.Set(cfg.ReadyMarker, fake.Element{})
	}

	res, err := NewBootstrap(cfg, logger.NewNop()).Run(context.Background(), page)

	require.NoError(t, err)
	assert.Equal(t, []entity.ReachabilityState{
		entity.ReachabilityStart,
		entity.ReachabilityAuthSwitchDetected,
		entity.ReachabilityReady,
	}, res.Trace)
	assert.Contains(t, page.Calls(), "click:"+cfg.SignInLink)
}

func TestBootstrap_OAuthFlow(t *testing.T) {
	cfg := testBootstrapConfig()
	page := fake.NewPage("https://manus.im/login")
	page.Set(cfg.SignInLink, fake.Element{})
	page.OnClick[cfg.SignInLink] = func(p *fake.Page) {
		p.Remove(cfg.SignInLink)
		p.Set(cfg.OAuthButton, fake.Element{})
	}
	popup := oauthPopup(cfg, page)
	page.Popups[cfg.OAuthButton] = popup

	res, err := NewBootstrap(cfg, logger.NewNop()).Run(context.Background(), page)

	require.NoError(t, err)
	assert.Equal(t, []entity.ReachabilityState{
		entity.ReachabilityStart,
		entity.ReachabilityAuthSwitchDetected,
		entity.ReachabilityOAuthInProgress,
		entity.ReachabilityReady,
	}, res.Trace)

	email, _ := popup.Element(cfg.EmailField)
	password, _ := popup.Element(cfg.PasswordField)
	assert.Equal(t, "me@example.com", email.Value)
	assert.Equal(t, "hunter2", password.Value)
	assert.Contains(t, popup.Calls(), "wait_closed:30s")
}

func TestBootstrap_PopupCloseTimeoutFallsThrough(t *testing.T) {
	cfg := testBootstrapConfig()
	page := fake.NewPage("https://manus.im/login")
	page.Set(cfg.OAuthButton, fake.Element{})
	popup := oauthPopup(cfg, page)
	popup.CloseErr = entity.ErrWaitTimeout
	page.Popups[cfg.OAuthButton] = popup

	res, err := NewBootstrap(cfg, logger.NewNop()).Run(context.Background(), page)

	require.NoError(t, err)
	assert.Equal(t, entity.ReachabilityReady, res.State)
}

func TestBootstrap_PasswordFieldNeverAppears(t *testing.T) {
	cfg := testBootstrapConfig()
	page := fake.NewPage("https://manus.im/login")
	page.Set(cfg.OAuthButton, fake.Element{})
	popup := fake.NewPage("https://accounts.google.com/")
	popup.Set(cfg.EmailField, fake.Element{})
	popup.Set(cfg.NextButton, fake.Element{})
	page.Popups[cfg.OAuthButton] = popup

	res, err := NewBootstrap(cfg, logger.NewNop()).Run(context.Background(), page)

	require.NoError(t, err)
	assert.Equal(t, []entity.ReachabilityState{
		entity.ReachabilityStart,
		entity.ReachabilityOAuthInProgress,
		entity.ReachabilityReadyUnconfirmed,
	}, res.Trace)
	for _, call := range popup.Calls() {
		assert.NotContains(t, call, "hunter2")
	}
}

func TestBootstrap_NoPopupFallsThrough(t *testing.T) {
	cfg := testBootstrapConfig()
	page := fake.NewPage("https://manus.im/login")
	page.Set(cfg.OAuthButton, fake.Element{})

	res, err := NewBootstrap(cfg, logger.NewNop()).Run(context.Background(), page)

	require.NoError(t, err)
	assert.Equal(t, entity.ReachabilityReadyUnconfirmed, res.State)
}

func TestBootstrap_SkipsOAuthWithoutCredentials(t *testing.T) {
	cfg := testBootstrapConfig()
	cfg.Password = ""
	page := fake.NewPage("https://manus.im/login")
	page.Set(cfg.OAuthButton, fake.Element{})

	res, err := NewBootstrap(cfg, logger.NewNop()).Run(context.Background(), page)

	require.NoError(t, err)
	assert.Equal(t, []entity.ReachabilityState{entity.ReachabilityStart, entity.ReachabilityReadyUnconfirmed}, res.Trace)
	assert.NotContains(t, page.Calls(), "click:"+cfg.OAuthButton)
}

func TestBootstrap_UnknownScreenAndLoadTimeout(t *testing.T) {
	cfg := testBootstrapConfig()
	page := fake.NewPage("https://manus.im/somewhere")
	page.LoadErr = entity.ErrWaitTimeout

	res, err := NewBootstrap(cfg, logger.NewNop()).Run(context.Background(), page)

	require.NoError(t, err)
	assert.True(t, res.State.Terminal())
	assert.Equal(t, entity.ReachabilityReadyUnconfirmed, res.State)
}

func TestBootstrap_CancelledContext(t *testing.T) {
	cfg := testBootstrapConfig()
	page := fake.NewPage("https://manus.im/login")
	page.LoadErr = errors.New("interrupted")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBootstrap(cfg, logger.NewNop()).Run(ctx, page)

	assert.ErrorIs(t, err, context.Canceled)
}
