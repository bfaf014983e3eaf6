package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iho/goloan/internal/adapter/http/dto"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	actorIDHeader        = "X-Actor-ID"
)

// apiError is a non-2xx answer from the API.
type apiError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d (%s)", e.StatusCode, e.Code)
}

type apiClient struct {
	baseURL string
	actorID string
	http    *http.Client
}

func newAPIClient(baseURL string, timeout time.Duration, actorID string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		actorID: actorID,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *apiClient) do(ctx context.Context, method, path string, in any, headers map[string]string, out any) (int, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return 0, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.actorID != "" {
		req.Header.Set(actorIDHeader, c.actorID)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &apiError{StatusCode: resp.StatusCode}
		var e dto.ErrorResponse
		if json.Unmarshal(raw, &e) == nil {
			apiErr.Code = e.Error
			apiErr.Message = e.Message
		}
		return resp.StatusCode, apiErr
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
