package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ui-operator/internal/application/port/output"
	"ui-operator/internal/domain/entity"
)

const DefaultReleaseTimeout = 30 * time.Second

// SessionManager acquires the remote session, its driver connection and a page.
type SessionManager struct {
	provider       output.SessionProvider
	connector      output.BrowserConnector
	logger         output.LoggerPort
	releaseTimeout time.Duration
}

func NewSessionManager(provider output.SessionProvider, connector output.BrowserConnector, logger output.LoggerPort) *SessionManager {
	return &SessionManager{
		provider:       provider,
		connector:      connector,
		logger:         logger,
		releaseTimeout: DefaultReleaseTimeout,
	}
}

type Session struct {
	Remote entity.RemoteSession
	Page   output.PagePort

	conn     output.BrowserConnection
	provider output.SessionProvider
	logger   output.LoggerPort
	timeout  time.Duration
	once     sync.Once
}

// Acquire releases whatever it already holds when a later stage fails.
func (m *SessionManager) Acquire(ctx context.Context) (*Session, error) {
	remote, err := m.provider.Create(ctx)
	if err != nil {
		return nil, fmt.Errorf("create remote session: %w", err)
	}
	s := &Session{
		Remote:   *remote,
		provider: m.provider,
		logger:   m.logger.WithField("session_id", remote.ID),
		timeout:  m.releaseTimeout,
	}

	conn, err := m.connector.Connect(ctx, remote.ConnectURL)
	if err != nil {
		s.Release(ctx)
		return nil, fmt.Errorf("connect to %s: %w", remote.ID, err)
	}
	s.conn = conn

	page, err := conn.Page(ctx)
	if err != nil {
		s.Release(ctx)
		return nil, fmt.Errorf("open page: %w", err)
	}
	s.Page = page

	s.logger.Info("Session acquired")
	return s, nil
}

// Release closes the connection and then the remote session. It runs once, on a
// context detached from ctx so a cancelled run still tears down. Failures are
// logged and never returned.
func (s *Session) Release(ctx context.Context) {
	s.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		var errs []error
		if s.conn != nil {
			if err := s.conn.Close(); err != nil {
				errs = append(errs, fmt.Errorf("%w: close connection: %v", entity.ErrSessionTeardown, err))
			}
		}
		if err := s.provider.Delete(ctx, s.Remote.ID); err != nil {
			errs = append(errs, fmt.Errorf("%w: release remote session: %v", entity.ErrSessionTeardown, err))
		}

		if err := errors.Join(errs...); err != nil {
			s.logger.Error("Session teardown failed", "error", err)
			return
		}
		s.logger.Info("Session released")
	})
}
