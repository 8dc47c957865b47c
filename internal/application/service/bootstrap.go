package service

import (
	"context"
	"time"

	"ui-operator/internal/application/port/output"
	"ui-operator/internal/domain/entity"
)

// BootstrapConfig holds every selector, timeout and credential the login walk uses.
type BootstrapConfig struct {
	LoadTimeout       time.Duration
	SignInLink        string
	SignInLoadTimeout time.Duration
	ReadyMarker       string

	OAuthButton       string
	PopupTimeout      time.Duration
	EmailField        string
	PasswordField     string
	NextButton        string
	PasswordTimeout   time.Duration
	PopupCloseTimeout time.Duration
	SettleDelay       time.Duration

	Email    string
	Password string
}

func DefaultBootstrapConfig() BootstrapConfig {
	return BootstrapConfig{
		LoadTimeout:       10 * time.Second,
		SignInLink:        "//a[contains(normalize-space(.), 'Already have an account')]",
		SignInLoadTimeout: 8 * time.Second,
		ReadyMarker:       "//button[contains(normalize-space(.), 'Run')]",
		OAuthButton:       "//button[contains(normalize-space(.), 'Sign up with Google') or contains(normalize-space(.), 'Continue with Google')]",
		PopupTimeout:      15 * time.Second,
		EmailField:        "input[type='email']",
		PasswordField:     "input[type='password']",
		NextButton:        "//button[contains(normalize-space(.), 'Next')]",
		PasswordTimeout:   12 * time.Second,
		PopupCloseTimeout: 30 * time.Second,
		SettleDelay:       2 * time.Second,
	}
}

func (c BootstrapConfig) hasCredentials() bool {
	return c.Email != "" && c.Password != ""
}

type BootstrapResult struct {
	State entity.ReachabilityState
	// Trace lists every state visited, in order, ending with State.
	Trace []entity.ReachabilityState
}

// Bootstrap walks a fresh session from whatever screen it landed on to the
// ready marker. No stage is fatal: a stage whose wait expires simply did not apply.
type Bootstrap struct {
	cfg    BootstrapConfig
	logger output.LoggerPort
}

func NewBootstrap(cfg BootstrapConfig, logger output.LoggerPort) *Bootstrap {
	return &Bootstrap{cfg: cfg, logger: logger.WithField("component", "bootstrap")}
}

// Run returns an error only when ctx is done.
func (b *Bootstrap) Run(ctx context.Context, page output.PagePort) (BootstrapResult, error) {
	res := BootstrapResult{}
	move := func(s entity.ReachabilityState) {
		res.State = s
		res.Trace = append(res.Trace, s)
		b.logger.Debug("Reachability state", "state", s)
	}
	move(entity.ReachabilityStart)

	b.tolerate(ctx, "initial load", page.WaitLoad(ctx, b.cfg.LoadTimeout))
	if err := ctx.Err(); err != nil {
		return res, err
	}

	if b.present(ctx, page, b.cfg.SignInLink) {
		move(entity.ReachabilityAuthSwitchDetected)
		b.logger.Info("Sign-up screen detected, switching to sign-in")
		if b.tolerate(ctx, "sign-in link", page.Click(ctx, b.cfg.SignInLink)) {
			b.tolerate(ctx, "sign-in load", page.WaitLoad(ctx, b.cfg.SignInLoadTimeout))
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
	}

	if b.present(ctx, page, b.cfg.ReadyMarker) {
		b.logger.Info("Already authenticated")
		move(entity.ReachabilityReady)
		return res, nil
	}

	if b.present(ctx, page, b.cfg.OAuthButton) {
		if !b.cfg.hasCredentials() {
			b.logger.Warn("OAuth button found but no credentials configured, skipping")
		} else {
			move(entity.ReachabilityOAuthInProgress)
			if err := b.oauth(ctx, page); err != nil {
				return res, err
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	if b.present(ctx, page, b.cfg.ReadyMarker) {
		b.logger.Info("Login complete")
		move(entity.ReachabilityReady)
		return res, nil
	}

	b.logger.Warn("Ready marker not detected, proceeding unconfirmed")
	move(entity.ReachabilityReadyUnconfirmed)
	return res, nil
}

func (b *Bootstrap) oauth(ctx context.Context, page output.PagePort) error {
	b.logger.Info("Starting OAuth flow")
	popup, err := page.ClickOpensPopup(ctx, b.cfg.OAuthButton, b.cfg.PopupTimeout)
	if !b.tolerate(ctx, "oauth popup", err) {
		return ctx.Err()
	}

	steps := []struct {
		stage string
		run   func() error
	}{
		{"email", func() error { return popup.Fill(ctx, b.cfg.EmailField, b.cfg.Email) }},
		{"email next", func() error { return popup.Click(ctx, b.cfg.NextButton) }},
		{"password field", func() error {
			return popup.WaitVisible(ctx, b.cfg.PasswordField, b.cfg.PasswordTimeout)
		}},
		{"password", func() error { return popup.Fill(ctx, b.cfg.PasswordField, b.cfg.Password) }},
		{"password next", func() error { return popup.Click(ctx, b.cfg.NextButton) }},
	}
	for _, s := range steps {
		if !b.tolerate(ctx, s.stage, s.run()) {
			return ctx.Err()
		}
	}

	b.tolerate(ctx, "popup close", popup.WaitClosed(ctx, b.cfg.PopupCloseTimeout))
	return sleepCtx(ctx, b.cfg.SettleDelay)
}

// tolerate logs a failed stage and reports whether the walk may go on down this path.
func (b *Bootstrap) tolerate(ctx context.Context, stage string, err error) bool {
	if err == nil {
		return true
	}
	if ctx.Err() == nil {
		b.logger.Warn("Bootstrap stage did not apply", "stage", stage, "error", err)
	}
	return false
}

func (b *Bootstrap) present(ctx context.Context, page output.PagePort, selector string) bool {
	n, err := page.Count(ctx, selector)
	if err != nil {
		b.tolerate(ctx, "query "+selector, err)
		return false
	}
	return n > 0
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
