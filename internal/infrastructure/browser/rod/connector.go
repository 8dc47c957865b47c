// Package rod drives a Chrome DevTools endpoint through go-rod.
package rod

import (
	"context"
	"fmt"
	"time"

	"ui-operator/internal/application/port/output"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

var (
	_ output.BrowserConnector  = (*Connector)(nil)
	_ output.BrowserConnection = (*Connection)(nil)
)

type Config struct {
	Timeout           time.Duration
	NavigationTimeout time.Duration
	SlowMotion        time.Duration
	Trace             bool
}

func DefaultConfig() Config {
	return Config{
		Timeout:           defaultTimeout,
		NavigationTimeout: defaultNavigationTimeout,
	}
}

type Connector struct {
	cfg    Config
	logger output.LoggerPort
}

func NewConnector(cfg Config, logger output.LoggerPort) *Connector {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = defaultNavigationTimeout
	}
	return &Connector{cfg: cfg, logger: logger}
}

// Connect attaches to the DevTools endpoint. ctx bounds the handshake only.
func (c *Connector) Connect(ctx context.Context, endpoint string) (output.BrowserConnection, error) {
	browser := rod.New().
		ControlURL(endpoint).
		Trace(c.cfg.Trace).
		SlowMotion(c.cfg.SlowMotion).
		Context(ctx)

	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect browser: %w", err)
	}

	return &Connection{
		browser: browser.Context(context.Background()),
		cfg:     c.cfg,
		logger:  c.logger,
	}, nil
}

type Connection struct {
	browser *rod.Browser
	cfg     Config
	logger  output.LoggerPort
}

func (c *Connection) Page(ctx context.Context) (output.PagePort, error) {
	b := c.browser.Context(ctx)

	pages, err := b.Pages()
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	if len(pages) > 0 {
		return newPage(pages[0].Context(context.Background()), c.browser, c.cfg, c.logger), nil
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	return newPage(page.Context(context.Background()), c.browser, c.cfg, c.logger), nil
}

func (c *Connection) Close() error {
	if err := c.browser.Close(); err != nil {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}
