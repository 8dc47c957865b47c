package rod

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ui-operator/internal/application/port/output"
	"ui-operator/internal/domain/entity"
	"ui-operator/internal/infrastructure/browser/htmltext"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

var _ output.PagePort = (*Page)(nil)

const (
	defaultTimeout           = 10 * time.Second
	defaultNavigationTimeout = 30 * time.Second
	screenshotQuality        = 80
)

// Page adapts one rod page. Every call is bounded by the caller's ctx and by the
// configured element or navigation timeout.
type Page struct {
	page       *rod.Page
	browser    *rod.Browser
	timeout    time.Duration
	navTimeout time.Duration
	logger     output.LoggerPort
}

func newPage(p *rod.Page, b *rod.Browser, cfg Config, logger output.LoggerPort) *Page {
	return &Page{
		page:       p,
		browser:    b,
		timeout:    cfg.Timeout,
		navTimeout: cfg.NavigationTimeout,
		logger:     logger,
	}
}

func isXPath(selector string) bool {
	return strings.HasPrefix(selector, "/") || strings.HasPrefix(selector, "(/")
}

func find(pg *rod.Page, selector string) (*rod.Element, error) {
	if isXPath(selector) {
		return pg.ElementX(selector)
	}
	return pg.Element(selector)
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	pg := p.page.Context(ctx).Timeout(p.navTimeout)
	wait := pg.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)

	if err := pg.Navigate(url); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("navigation failed: %w", err)
	}
	wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

// element resolves selector within the element timeout.
func (p *Page) element(ctx context.Context, selector string) (*rod.Element, error) {
	el, err := find(p.page.Context(ctx).Timeout(p.timeout), selector)
	if err == nil {
		return el, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	var notFound *rod.ElementNotFoundError
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &notFound) {
		return nil, fmt.Errorf("%w: %s", entity.ErrElementNotFound, selector)
	}
	return nil, fmt.Errorf("query %s: %w", selector, err)
}

func actionErr(ctx context.Context, op, selector string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var (
		notInteractable *rod.NotInteractableError
		invisible       *rod.InvisibleShapeError
		covered         *rod.CoveredError
	)
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.As(err, &notInteractable) ||
		errors.As(err, &invisible) ||
		errors.As(err, &covered) {
		return fmt.Errorf("%w: %s %s: %v", entity.ErrNotActionable, op, selector, err)
	}
	return fmt.Errorf("%s %s: %w", op, selector, err)
}

func (p *Page) Click(ctx context.Context, selector string) error {
	el, err := p.element(ctx, selector)
	if err != nil {
		return err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return actionErr(ctx, "click", selector, err)
	}
	return nil
}

// Fill replaces the current value. It never presses Enter.
func (p *Page) Fill(ctx context.Context, selector, text string) error {
	el, err := p.element(ctx, selector)
	if err != nil {
		return err
	}
	if _, err := el.WaitInteractable(); err != nil {
		return actionErr(ctx, "fill", selector, err)
	}
	if err := el.SelectAllText(); err == nil {
		_ = el.Input("")
	}
	if err := el.Input(text); err != nil {
		return actionErr(ctx, "fill", selector, err)
	}
	return nil
}

func (p *Page) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	pg := p.page.Context(ctx).Timeout(timeout)
	el, err := find(pg, selector)
	if err == nil {
		err = el.WaitVisible()
	}
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s after %s", entity.ErrWaitTimeout, selector, timeout)
	}
	return fmt.Errorf("wait for %s: %w", selector, err)
}

func (p *Page) WaitLoad(ctx context.Context, timeout time.Duration) error {
	err := p.page.Context(ctx).Timeout(timeout).WaitLoad()
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: load event after %s", entity.ErrWaitTimeout, timeout)
	}
	return fmt.Errorf("wait load: %w", err)
}

// InnerText reads the rendered innerText. When the document is mid-navigation and
// the read fails, text is rendered from the current HTML instead.
func (p *Page) InnerText(ctx context.Context, selector string) (string, error) {
	el, err := p.element(ctx, selector)
	if err != nil {
		return "", err
	}

	text, err := el.Text()
	if err == nil {
		return text, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}

	raw, htmlErr := el.HTML()
	if htmlErr != nil {
		return "", fmt.Errorf("read text of %s: %w", selector, err)
	}
	p.logger.Debug("innerText unavailable, rendering from HTML", "selector", selector, "error", err)
	return htmltext.VisibleText(raw, nil)
}

func (p *Page) Count(ctx context.Context, selector string) (int, error) {
	pg := p.page.Context(ctx)
	var (
		els rod.Elements
		err error
	)
	if isXPath(selector) {
		els, err = pg.ElementsX(selector)
	} else {
		els, err = pg.Elements(selector)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		return 0, fmt.Errorf("count %s: %w", selector, err)
	}
	return len(els), nil
}

func (p *Page) ClickOpensPopup(ctx context.Context, selector string, timeout time.Duration) (output.PagePort, error) {
	wait := p.page.Context(ctx).Timeout(timeout).WaitOpen()
	if err := p.Click(ctx, selector); err != nil {
		return nil, err
	}

	popup, err := wait()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: no page opened by %s after %s", entity.ErrWaitTimeout, selector, timeout)
		}
		return nil, fmt.Errorf("wait for popup: %w", err)
	}

	return &Page{
		page:       popup,
		browser:    p.browser,
		timeout:    p.timeout,
		navTimeout: p.navTimeout,
		logger:     p.logger.WithField("popup", string(popup.TargetID)),
	}, nil
}

// WaitClosed blocks until this page's target is destroyed.
func (p *Page) WaitClosed(ctx context.Context, timeout time.Duration) error {
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	b := p.browser.Context(tctx)
	if err := (proto.TargetSetDiscoverTargets{Discover: true}).Call(b); err != nil {
		return fmt.Errorf("watch targets: %w", err)
	}

	target := p.page.TargetID
	wait := b.EachEvent(func(e *proto.TargetTargetDestroyed) bool {
		return e.TargetID == target
	})

	if gone, err := p.targetGone(b); err == nil && gone {
		return nil
	}
	wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	if tctx.Err() != nil {
		return fmt.Errorf("%w: page %s still open after %s", entity.ErrWaitTimeout, target, timeout)
	}
	return nil
}

func (p *Page) targetGone(b *rod.Browser) (bool, error) {
	res, err := proto.TargetGetTargets{}.Call(b)
	if err != nil {
		return false, err
	}
	for _, info := range res.TargetInfos {
		if info.TargetID == p.page.TargetID {
			return false, nil
		}
	}
	return true, nil
}

// Screenshot captures the viewport as JPEG.
func (p *Page) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	data, err := p.page.Context(ctx).Timeout(p.timeout).Screenshot(false, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(screenshotQuality),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return &entity.Screenshot{Data: data, Format: "jpeg"}, nil
}

func (p *Page) CurrentURL() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}
