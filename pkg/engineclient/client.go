// Package engineclient wraps the REST surface of the remote workflow
// engine, translating transport and status-code failures into the
// apierrors taxonomy the rest of the server reasons about.
package engineclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/worldline-go/klient"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/apierrors"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/workflow"
)

// defaultTimeout matches spec.md §6.2's default when the caller passes
// zero.
const defaultTimeout = 30 * time.Second

// Client talks to the engine's REST API over HTTP.
type Client struct {
	baseURL string
	client  *klient.Client
	timeout time.Duration
}

// New constructs a Client. apiKey is sent as the engine's API-key header;
// an empty key is valid for engines configured without auth. A zero
// timeout falls back to defaultTimeout.
func New(baseURL, apiKey string, timeout time.Duration) (*Client, error) {
	headers := http.Header{"Content-Type": []string{"application/json"}}
	if apiKey != "" {
		headers["X-N8N-API-KEY"] = []string{apiKey}
	}

	client, err := klient.New(
		klient.WithBaseURL(baseURL),
		klient.WithLogger(slog.Default()),
		klient.WithHeaderSet(headers),
		klient.WithDisableEnvValues(true),
	)
	if err != nil {
		return nil, fmt.Errorf("construct engine client: %w", err)
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{baseURL: baseURL, client: client, timeout: timeout}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	var status int
	var rawBody []byte
	err = c.client.Do(req, func(r *http.Response) error {
		status = r.StatusCode
		data, readErr := io.ReadAll(r.Body)
		if readErr != nil {
			return readErr
		}
		rawBody = data
		return nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return apierrors.ErrTimeout
		}
		return fmt.Errorf("%w: %v", apierrors.ErrUnreachable, err)
	}

	if status < 200 || status >= 300 {
		return apierrors.NewEngineError(status, string(rawBody))
	}

	if out != nil && len(rawBody) > 0 {
		if err := json.Unmarshal(rawBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// WorkflowListItem is one entry of a list-workflows response.
type WorkflowListItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// listResponse wraps the engine's paginated envelope.
type listResponse[T any] struct {
	Data       []T    `json:"data"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// ListWorkflows returns every workflow summary, following pagination
// cursors until the engine reports none remain.
func (c *Client) ListWorkflows(ctx context.Context) ([]WorkflowListItem, error) {
	var all []WorkflowListItem
	path := "/api/v1/workflows"
	for {
		var page listResponse[WorkflowListItem]
		if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Data...)
		if page.NextCursor == "" {
			break
		}
		path = fmt.Sprintf("/api/v1/workflows?cursor=%s", page.NextCursor)
	}
	return all, nil
}

// GetWorkflow fetches one workflow's full raw document.
func (c *Client) GetWorkflow(ctx context.Context, id string) (*workflow.RawWorkflow, error) {
	var raw workflow.RawWorkflow
	if err := c.do(ctx, http.MethodGet, "/api/v1/workflows/"+id, nil, &raw); err != nil {
		return nil, err
	}
	return &raw, nil
}

// CreateWorkflow creates a new workflow from raw, returning the engine's
// stored copy (with its assigned ID).
func (c *Client) CreateWorkflow(ctx context.Context, raw *workflow.RawWorkflow) (*workflow.RawWorkflow, error) {
	var created workflow.RawWorkflow
	if err := c.do(ctx, http.MethodPost, "/api/v1/workflows", raw, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateWorkflow replaces a workflow's entire document.
func (c *Client) UpdateWorkflow(ctx context.Context, id string, raw *workflow.RawWorkflow) (*workflow.RawWorkflow, error) {
	var updated workflow.RawWorkflow
	if err := c.do(ctx, http.MethodPut, "/api/v1/workflows/"+id, raw, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteWorkflow removes a workflow.
func (c *Client) DeleteWorkflow(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/workflows/"+id, nil, nil)
}

// SetActive activates or deactivates a workflow.
func (c *Client) SetActive(ctx context.Context, id string, active bool) error {
	verb := "activate"
	if !active {
		verb = "deactivate"
	}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/workflows/%s/%s", id, verb), nil, nil)
}

// Execution is one run's summary.
type Execution struct {
	ID         string `json:"id"`
	WorkflowID string `json:"workflowId"`
	Status     string `json:"status"`
	StartedAt  string `json:"startedAt"`
	StoppedAt  string `json:"stoppedAt,omitempty"`
}

// ListExecutions returns the most recent runs for a workflow, newest first.
func (c *Client) ListExecutions(ctx context.Context, workflowID string, limit int) ([]Execution, error) {
	path := fmt.Sprintf("/api/v1/executions?workflowId=%s&limit=%d", workflowID, limit)
	var page listResponse[Execution]
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return page.Data, nil
}

// GetExecution fetches one run's full data, including its result trace
// JSON when includeData is set.
func (c *Client) GetExecution(ctx context.Context, id string, includeData bool) (json.RawMessage, error) {
	path := "/api/v1/executions/" + id
	if includeData {
		path += "?includeData=true"
	}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// TriggerWebhook fires a workflow's webhook trigger, either against the
// production path or the test path, and returns the raw JSON response.
func (c *Client) TriggerWebhook(ctx context.Context, path string, test bool, payload any) (json.RawMessage, error) {
	prefix := "/webhook/"
	if test {
		prefix = "/webhook-test/"
	}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, prefix+path, payload, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
