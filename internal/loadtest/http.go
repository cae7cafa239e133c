package loadtest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/staffwise/internal/domain/types"
)

// client wraps http.Client with the service routes.
type client struct {
	http    *http.Client
	baseURL string
}

func newClient(baseURL string, timeout time.Duration) *client {
	return &client{http: &http.Client{Timeout: timeout}, baseURL: baseURL}
}

func (c *client) health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", http.NoBody)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnhealthy, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

func (c *client) recommend(ctx context.Context, projectID int64) (types.Response, error) {
	url := c.baseURL + "/api/recommendations/" + strconv.FormatInt(projectID, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, http.NoBody)
	if err != nil {
		return types.Response{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return types.Response{}, fmt.Errorf("project %d: %w", projectID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.Response{}, fmt.Errorf("project %d: read body: %w", projectID, err)
	}
	if resp.StatusCode != http.StatusOK {
		return types.Response{}, fmt.Errorf("%w: project %d: %d %s", ErrStatus, projectID, resp.StatusCode, body)
	}

	var out types.Response
	if err := json.Unmarshal(body, &out); err != nil {
		return types.Response{}, fmt.Errorf("project %d: decode: %w", projectID, err)
	}
	return out, nil
}
