// Package remote implements the best-effort remote API collaborator.
// The local store is the source of truth; remote calls are opportunistic
// and their failures never affect local control flow.
package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Client talks to the remote notes API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a remote client. An empty base URL yields a client
// whose calls succeed as no-ops, which is how local-only deployments run.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Delete removes the note on the remote. Any non-2xx response becomes an
// error; callers log it and move on.
func (c *Client) Delete(ctx context.Context, noteID string) error {
	if c.baseURL == "" {
		return nil
	}

	endpoint := fmt.Sprintf("%s/notes/%s", c.baseURL, url.PathEscape(noteID))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build remote delete request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("remote delete: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("remote delete: unexpected status %d", resp.StatusCode)
	}

	c.logger.Debug("remote note deleted", zap.String("noteID", noteID))
	return nil
}
