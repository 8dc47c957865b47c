// Package fake is an in-memory browser used by tests of the operator core.
package fake

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"time"

	"ui-operator/internal/application/port/output"
	"ui-operator/internal/domain/entity"
)

var _ output.PagePort = (*Page)(nil)

const pollInterval = 5 * time.Millisecond

type Element struct {
	Text     string
	Value    string
	Hidden   bool
	Disabled bool
}

// Page keeps elements keyed by their exact selector string.
type Page struct {
	mu       sync.Mutex
	url      string
	elements map[string]*Element
	calls    []string

	// OnClick runs after a successful click on the selector.
	OnClick map[string]func(p *Page)
	// Popups maps a selector to the page its click opens.
	Popups map[string]*Page

	NavigateErr error
	LoadErr     error
	CloseErr    error
}

func NewPage(url string) *Page {
	return &Page{
		url:      url,
		elements: make(map[string]*Element),
		OnClick:  make(map[string]func(p *Page)),
		Popups:   make(map[string]*Page),
	}
}

// Set adds or replaces an element.
func (p *Page) Set(selector string, el Element) *Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	e := el
	p.elements[selector] = &e
	return p
}

func (p *Page) Remove(selector string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.elements, selector)
}

func (p *Page) Element(selector string) (Element, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	el, ok := p.elements[selector]
	if !ok {
		return Element{}, false
	}
	return *el, true
}

// Calls returns the recorded operations as "op:arg" strings.
func (p *Page) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.calls))
	copy(out, p.calls)
	return out
}

func (p *Page) record(op, arg string) {
	p.calls = append(p.calls, op+":"+arg)
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("navigate", url)
	if p.NavigateErr != nil {
		return p.NavigateErr
	}
	p.url = url
	return nil
}

func (p *Page) Click(ctx context.Context, selector string) error {
	p.mu.Lock()
	p.record("click", selector)
	el, ok := p.elements[selector]
	if !ok {
		p.mu.Unlock()
		return fmt.Errorf("%w: %s", entity.ErrElementNotFound, selector)
	}
	if el.Disabled || el.Hidden {
		p.mu.Unlock()
		return fmt.Errorf("%w: %s", entity.ErrNotActionable, selector)
	}
	hook := p.OnClick[selector]
	p.mu.Unlock()

	if hook != nil {
		hook(p)
	}
	return nil
}

func (p *Page) Fill(ctx context.Context, selector, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("fill", selector+"="+text)
	el, ok := p.elements[selector]
	if !ok {
		return fmt.Errorf("%w: %s", entity.ErrElementNotFound, selector)
	}
	if el.Disabled || el.Hidden {
		return fmt.Errorf("%w: %s", entity.ErrNotActionable, selector)
	}
	el.Value = text
	return nil
}

func (p *Page) visible(selector string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	el, ok := p.elements[selector]
	return ok && !el.Hidden
}

func (p *Page) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	p.mu.Lock()
	p.record("wait_visible", selector)
	p.mu.Unlock()

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(pollInterval)
	defer tick.Stop()

	for {
		if p.visible(selector) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("%w: %s after %s", entity.ErrWaitTimeout, selector, timeout)
		case <-tick.C:
		}
	}
}

func (p *Page) WaitLoad(ctx context.Context, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("wait_load", timeout.String())
	return p.LoadErr
}

func (p *Page) InnerText(ctx context.Context, selector string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	el, ok := p.elements[selector]
	if !ok {
		return "", fmt.Errorf("%w: %s", entity.ErrElementNotFound, selector)
	}
	return el.Text, nil
}

func (p *Page) Count(ctx context.Context, selector string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.elements[selector]; ok {
		return 1, nil
	}
	return 0, nil
}

func (p *Page) ClickOpensPopup(ctx context.Context, selector string, timeout time.Duration) (output.PagePort, error) {
	if err := p.Click(ctx, selector); err != nil {
		return nil, err
	}
	p.mu.Lock()
	popup := p.Popups[selector]
	p.mu.Unlock()
	if popup == nil {
		return nil, fmt.Errorf("%w: no popup opened by %s", entity.ErrWaitTimeout, selector)
	}
	return popup, nil
}

func (p *Page) WaitClosed(ctx context.Context, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("wait_closed", timeout.String())
	return p.CloseErr
}

func (p *Page) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for x := 0; x < 4; x++ {
		for y := 0; y < 3; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return &entity.Screenshot{Data: buf.Bytes(), Format: "png", Width: 4, Height: 3}, nil
}

func (p *Page) CurrentURL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}
