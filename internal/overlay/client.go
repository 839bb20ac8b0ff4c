package overlay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Rana718/seedforge/internal/metrics"
	"go.uber.org/zap"
)

const maxErrorBody = 512

// HTTPClient posts enhancement requests to an external collaborator.
type HTTPClient struct {
	url        string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewHTTPClient creates a client for the collaborator at url. timeout
// bounds each call on top of the caller's context.
func NewHTTPClient(url, apiKey string, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) *HTTPClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		url:    url,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: m,
	}
}

func (c *HTTPClient) Enhance(ctx context.Context, req Request) (*Response, error) {
	jsonBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal enhancement request: %w", err)
	}

	startTime := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	duration := time.Since(startTime)

	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}
	c.metrics.RecordOverlayCall(statusCode, duration, err)

	if err != nil {
		c.logger.Error("Enhancement request failed",
			zap.Error(err),
			zap.Int("ai_fields", len(req.AIFields)),
			zap.Duration("duration", duration),
		)
		return nil, fmt.Errorf("enhancement request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("Enhancement service returned non-success status",
			zap.Int("status_code", resp.StatusCode),
			zap.Duration("duration", duration),
		)
		return nil, fmt.Errorf("enhancement service returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var out Response
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode enhancement response: %w", err)
	}

	c.logger.Info("Enhancement applied",
		zap.Int("rows", len(out.Rows)),
		zap.Bool("deterministic", out.Deterministic),
		zap.Duration("duration", duration),
	)
	return &out, nil
}
