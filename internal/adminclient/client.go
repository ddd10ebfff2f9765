package adminclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/2beens/gymquest/internal/middleware"
	"github.com/2beens/gymquest/internal/progression"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client calls the admin routes of a running service.
type Client struct {
	baseURL    string
	adminToken string
	httpClient *http.Client
}

func New(baseURL, adminToken string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		adminToken: adminToken,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// StatusError is returned for any non 2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// DecaySweep runs the sweep as of date (YYYY-MM-DD), or as of today when date is empty.
func (c *Client) DecaySweep(ctx context.Context, date string) (*progression.SweepResponse, error) {
	query := url.Values{}
	if date != "" {
		query.Set("date", date)
	}

	var resp progression.SweepResponse
	if err := c.post(ctx, "/admin/decay/sweep", query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Reconcile(ctx context.Context) (*progression.ReconcileResult, error) {
	var resp progression.ReconcileResult
	if err := c.post(ctx, "/admin/reconcile", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set(middleware.HeaderAdminToken, c.adminToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
