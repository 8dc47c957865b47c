package service

import (
	"context"
	"errors"
	"testing"

	"ui-operator/internal/domain/entity"
	"ui-operator/internal/infrastructure/browser/fake"
	"ui-operator/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSessionManager_AcquireAndRelease(t *testing.T) {
	page := fake.NewPage("about:blank")
	provider := &fake.Provider{}
	conn := fake.NewConnection(page)
	connector := &fake.Connector{Conn: conn}

	s, err := NewSessionManager(provider, connector, logger.NewNop()).Acquire(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "fake-1", s.Remote.ID)
	assert.Same(t, page, s.Page)
	assert.Equal(t, []string{"ws://fake/fake-1"}, connector.Endpoints())

	s.Release(context.Background())
	s.Release(context.Background())

	assert.Equal(t, 1, conn.Closed())
	assert.Equal(t, []string{"fake-1"}, provider.Deleted())
}

func TestSessionManager_CreateFailure(t *testing.T) {
	provider := &fake.Provider{CreateErr: errors.New("quota exceeded")}
	connector := &fake.Connector{}

	_, err := NewSessionManager(provider, connector, logger.NewNop()).Acquire(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Empty(t, connector.Endpoints())
	assert.Empty(t, provider.Deleted())
}

func TestSessionManager_ConnectFailureReleasesRemote(t *testing.T) {
	provider := &fake.Provider{}
	connector := &fake.Connector{ConnectErr: errors.New("handshake failed")}

	_, err := NewSessionManager(provider, connector, logger.NewNop()).Acquire(context.Background())

	require.Error(t, err)
	assert.Equal(t, []string{"fake-1"}, provider.Deleted())
}

func TestSessionManager_PageFailureReleasesEverything(t *testing.T) {
	provider := &fake.Provider{}
	conn := fake.NewConnection(nil)
	conn.PageErr = errors.New("target crashed")

	_, err := NewSessionManager(provider, &fake.Connector{Conn: conn}, logger.NewNop()).Acquire(context.Background())

	require.Error(t, err)
	assert.Equal(t, 1, conn.Closed())
	assert.Equal(t, []string{"fake-1"}, provider.Deleted())
}

func TestSession_TeardownErrorsAreLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	provider := &fake.Provider{DeleteErr: errors.New("404 session gone")}
	conn := fake.NewConnection(fake.NewPage(""))
	conn.CloseErr = errors.New("websocket closed")

	s, err := NewSessionManager(provider, &fake.Connector{Conn: conn}, logger.NewFromZap(zap.New(core))).Acquire(context.Background())
	require.NoError(t, err)

	assert.NotPanics(t, func() { s.Release(context.Background()) })

	failures := logs.FilterMessage("Session teardown failed")
	require.Equal(t, 1, failures.Len())
	assert.Equal(t, zapcore.ErrorLevel, failures.All()[0].Level)
	logged, ok := failures.All()[0].ContextMap()["error"].(string)
	require.True(t, ok)
	assert.Contains(t, logged, entity.ErrSessionTeardown.Error())
	assert.Contains(t, logged, "websocket closed")
	assert.Contains(t, logged, "404 session gone")
}

func TestSession_ReleaseWithCancelledContextStillTearsDown(t *testing.T) {
	provider := &fake.Provider{}
	conn := fake.NewConnection(fake.NewPage(""))
	s, err := NewSessionManager(provider, &fake.Connector{Conn: conn}, logger.NewNop()).Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Release(ctx)

	assert.Equal(t, 1, conn.Closed())
	assert.Equal(t, []string{"fake-1"}, provider.Deleted())
}
