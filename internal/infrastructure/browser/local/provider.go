// Package local provides browser sessions by launching Chrome on this machine.
package local

import (
	"context"
	"fmt"
	"sync"

	"ui-operator/internal/application/port/output"
	"ui-operator/internal/domain/entity"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/google/uuid"
)

var _ output.SessionProvider = (*Provider)(nil)

type Config struct {
	Headless  bool
	NoSandbox bool
	// Bin is the Chrome binary. Empty lets rod find or download one.
	Bin string
}

type Provider struct {
	cfg    Config
	logger output.LoggerPort

	mu        sync.Mutex
	launchers map[string]*launcher.Launcher
}

func NewProvider(cfg Config, logger output.LoggerPort) *Provider {
	return &Provider{
		cfg:       cfg,
		logger:    logger,
		launchers: make(map[string]*launcher.Launcher),
	}
}

func (p *Provider) newLauncher(ctx context.Context) *launcher.Launcher {
	l := launcher.New().
		Context(ctx).
		Headless(p.cfg.Headless).
		NoSandbox(p.cfg.NoSandbox).
		Delete("use-mock-keychain")
	if p.cfg.Bin != "" {
		l = l.Bin(p.cfg.Bin)
	}
	return l
}

func (p *Provider) Create(ctx context.Context) (*entity.RemoteSession, error) {
	l := p.newLauncher(ctx)

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	id := uuid.NewString()
	p.mu.Lock()
	p.launchers[id] = l
	p.mu.Unlock()

	p.logger.Info("Local browser launched", "session_id", id, "pid", l.PID())
	return &entity.RemoteSession{ID: id, ConnectURL: url}, nil
}

// Delete kills the Chrome process and removes its profile directory.
func (p *Provider) Delete(ctx context.Context, id string) error {
	p.mu.Lock()
	l, ok := p.launchers[id]
	delete(p.launchers, id)
	p.mu.Unlock()

	if !ok {
		return fmt.Errorf("unknown local session %s", id)
	}
	l.Kill()
	l.Cleanup()
	return nil
}
