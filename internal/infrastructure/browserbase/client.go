// Package browserbase provisions remote Chrome sessions from Browserbase.
package browserbase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ui-operator/internal/application/port/output"
	"ui-operator/internal/domain/entity"
)

var _ output.SessionProvider = (*Client)(nil)

const (
	DefaultBaseURL = "https://api.browserbase.com"
	apiKeyHeader   = "X-BB-API-Key"
	statusRelease  = "REQUEST_RELEASE"
	maxErrorBody   = 512
)

type Config struct {
	APIKey    string
	ProjectID string
	BaseURL   string
	Timeout   time.Duration
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger output.LoggerPort
}

func NewClient(cfg Config, logger output.LoggerPort) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type createRequest struct {
	ProjectID string `json:"projectId"`
}

type sessionResponse struct {
	ID         string `json:"id"`
	ConnectURL string `json:"connectUrl"`
	Status     string `json:"status,omitempty"`
}

type updateRequest struct {
	ProjectID string `json:"projectId"`
	Status    string `json:"status"`
}

func (c *Client) Create(ctx context.Context) (*entity.RemoteSession, error) {
	var resp sessionResponse
	if err := c.do(ctx, "/v1/sessions", createRequest{ProjectID: c.cfg.ProjectID}, &resp); err != nil {
		return nil, fmt.Errorf("create browserbase session: %w", err)
	}
	if resp.ID == "" || resp.ConnectURL == "" {
		return nil, fmt.Errorf("create browserbase session: response without id or connectUrl")
	}

	c.logger.Info("Browserbase session created", "session_id", resp.ID)
	return &entity.RemoteSession{ID: resp.ID, ConnectURL: resp.ConnectURL}, nil
}

// Delete asks Browserbase to release the session.
func (c *Client) Delete(ctx context.Context, id string) error {
	req := updateRequest{ProjectID: c.cfg.ProjectID, Status: statusRelease}
	if err := c.do(ctx, "/v1/sessions/"+id, req, nil); err != nil {
		return fmt.Errorf("release browserbase session %s: %w", id, err)
	}
	c.logger.Info("Browserbase session released", "session_id", id)
	return nil
}

func (c *Client) do(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(excerpt)))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
