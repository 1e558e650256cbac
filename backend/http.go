package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/optillm/optillm/utils"
)

// HTTPClient talks to a JSON completion endpoint. The request body is the
// prompt plus whatever params the engine shaped; the response is expected to
// carry the generated text under "text".
type HTTPClient struct {
	endpoint string
	headers  map[string]string
	client   *http.Client
	logger   utils.Logger
}

type HTTPOption func(*HTTPClient)

func WithHeaders(headers map[string]string) HTTPOption {
	return func(c *HTTPClient) {
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

func WithTimeout(timeout time.Duration) HTTPOption {
	return func(c *HTTPClient) {
		c.client.Timeout = timeout
	}
}

func WithHTTPLogger(logger utils.Logger) HTTPOption {
	return func(c *HTTPClient) {
		c.logger = logger
	}
}

func NewHTTPClient(endpoint string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		endpoint: endpoint,
		headers:  map[string]string{"Content-Type": "application/json"},
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   utils.NewLogger(utils.LogLevelWarn),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type completionResponse struct {
	Text string `json:"text"`
}

func (c *HTTPClient) Invoke(ctx context.Context, prompt string, params map[string]any) (string, error) {
	body := map[string]any{"prompt": prompt}
	for k, v := range params {
		body[k] = v
	}

	reqBody, err := json.Marshal(body)
	if err != nil {
		return "", NewTransportError(CategoryRejected, "failed to encode request", err)
	}
	c.logger.Debug("Sending completion request", "endpoint", c.endpoint, "bytes", len(reqBody))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", NewTransportError(CategoryRejected, "failed to build request", err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", NewTransportError(classifyDialError(err), "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewTransportError(CategoryNetwork, "failed to read response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Backend returned error status", "status", resp.StatusCode, "body", string(raw))
		return "", NewTransportError(CategoryRejected, fmt.Sprintf("backend returned status %d", resp.StatusCode), nil)
	}

	var parsed completionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", NewTransportError(CategoryRejected, "malformed completion response", err)
	}

	c.logger.Debug("Completion received", "bytes", len(parsed.Text))
	return parsed.Text, nil
}

func classifyDialError(err error) string {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CategoryTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryTimeout
	}
	return CategoryNetwork
}
