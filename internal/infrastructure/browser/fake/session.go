package fake

import (
	"context"
	"fmt"
	"sync"

	"ui-operator/internal/application/port/output"
	"ui-operator/internal/domain/entity"
)

var (
	_ output.SessionProvider   = (*Provider)(nil)
	_ output.BrowserConnector  = (*Connector)(nil)
	_ output.BrowserConnection = (*Connection)(nil)
)

type Provider struct {
	mu        sync.Mutex
	created   int
	deleted   []string
	CreateErr error
	DeleteErr error
}

func (p *Provider) Create(ctx context.Context) (*entity.RemoteSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.CreateErr != nil {
		return nil, p.CreateErr
	}
	p.created++
	id := fmt.Sprintf("fake-%d", p.created)
	return &entity.RemoteSession{ID: id, ConnectURL: "ws://fake/" + id}, nil
}

func (p *Provider) Delete(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, id)
	return p.DeleteErr
}

func (p *Provider) Created() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.created
}

func (p *Provider) Deleted() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.deleted))
	copy(out, p.deleted)
	return out
}

type Connector struct {
	Conn       *Connection
	ConnectErr error
	endpoints  []string
}

func (c *Connector) Connect(ctx context.Context, endpoint string) (output.BrowserConnection, error) {
	c.endpoints = append(c.endpoints, endpoint)
	if c.ConnectErr != nil {
		return nil, c.ConnectErr
	}
	return c.Conn, nil
}

func (c *Connector) Endpoints() []string {
	return c.endpoints
}

type Connection struct {
	mu       sync.Mutex
	page     *Page
	closed   int
	PageErr  error
	CloseErr error
}

func NewConnection(page *Page) *Connection {
	return &Connection{page: page}
}

func (c *Connection) Page(ctx context.Context) (output.PagePort, error) {
	if c.PageErr != nil {
		return nil, c.PageErr
	}
	return c.page, nil
}

func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
	return c.CloseErr
}

func (c *Connection) Closed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
