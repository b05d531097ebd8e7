package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"invagro-dashboard/internal/models"
)

// Client posts user messages to the reply endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient uses a plain http.Client when httpClient is nil. No timeout is
// set; a request runs until it settles or its context is cancelled.
func NewClient(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{endpoint: endpoint, httpClient: httpClient}
}

// Post sends {"message": message} and returns the status and raw body. err is
// set only when no response was received. A body that cannot be read is
// returned as empty.
func (c *Client) Post(ctx context.Context, message string) (int, []byte, error) {
	payload, err := json.Marshal(models.ChatRequest{Message: message})
	if err != nil {
		return 0, nil, fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		body = nil
	}
	return resp.StatusCode, body, nil
}
