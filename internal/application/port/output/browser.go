package output

import (
	"context"
	"time"

	"ui-operator/internal/domain/entity"
)

// PagePort is the live page the operator acts on. Selectors starting with "/" are
// XPath; anything else is CSS.
//
// Click and Fill fail with errors wrapping entity.ErrElementNotFound or
// entity.ErrNotActionable. WaitVisible, WaitLoad and WaitClosed fail with
// entity.ErrWaitTimeout when their bound elapses.
type PagePort interface {
	Navigate(ctx context.Context, url string) error
	Click(ctx context.Context, selector string) error
	Fill(ctx context.Context, selector, text string) error

	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	WaitLoad(ctx context.Context, timeout time.Duration) error
	InnerText(ctx context.Context, selector string) (string, error)
	Count(ctx context.Context, selector string) (int, error)

	// ClickOpensPopup clicks selector and returns the page the click opened.
	ClickOpensPopup(ctx context.Context, selector string, timeout time.Duration) (PagePort, error)
	WaitClosed(ctx context.Context, timeout time.Duration) error

	Screenshot(ctx context.Context) (*entity.Screenshot, error)
	CurrentURL() string
}

// BrowserConnection is a driver connection to one remote browser.
type BrowserConnection interface {
	// Page returns the first existing page, creating one when there is none.
	Page(ctx context.Context) (PagePort, error)
	Close() error
}

type BrowserConnector interface {
	Connect(ctx context.Context, endpoint string) (BrowserConnection, error)
}

// SessionProvider provisions remote browser endpoints.
type SessionProvider interface {
	Create(ctx context.Context) (*entity.RemoteSession, error)
	Delete(ctx context.Context, id string) error
}
