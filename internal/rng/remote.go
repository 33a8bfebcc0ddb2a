package rng

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RemoteConfig holds connection settings for the external seed service.
type RemoteConfig struct {
	BaseURL    string
	APIKey     string
	APISecret  string
	SiteCode   string
	Timeout    time.Duration
	RetryCount int
}

// Remote is a client for the external seed service. Requests are signed
// with HMAC-SHA256 over the request body.
type Remote struct {
	config     *RemoteConfig
	httpClient *http.Client
}

// NewRemote creates a seed service client.
func NewRemote(config *RemoteConfig) *Remote {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	return &Remote{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// NewRemoteWithHTTPClient creates a seed service client with a custom
// HTTP client.
func NewRemoteWithHTTPClient(config *RemoteConfig, httpClient *http.Client) *Remote {
	return &Remote{
		config:     config,
		httpClient: httpClient,
	}
}

type seedsRequest struct {
	SiteCode string `json:"site_code"`
	Count    int    `json:"count"`
}

type seedsResponse struct {
	Seeds []uint64  `json:"seeds"`
	Error *seedsErr `json:"error,omitempty"`
}

type seedsErr struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *seedsErr) Error() string {
	return fmt.Sprintf("seed service error %s: %s", e.Code, e.Message)
}

// computeHMAC computes the HMAC-SHA256 signature for the request body.
func (r *Remote) computeHMAC(body []byte) string {
	h := hmac.New(sha256.New, []byte(r.config.APISecret))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// Seeds requests count raw values from the seed service.
func (r *Remote) Seeds(ctx context.Context, count int) ([]uint64, error) {
	if count <= 0 {
		return nil, fmt.Errorf("seed count must be positive, got %d", count)
	}

	bodyBytes, err := json.Marshal(&seedsRequest{SiteCode: r.config.SiteCode, Count: count})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal seed request: %w", err)
	}

	retryCount := r.config.RetryCount
	if retryCount == 0 {
		retryCount = 1
	}

	var resp *http.Response
	var lastErr error
	for i := 0; i < retryCount; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.config.BaseURL+"/seeds", bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, fmt.Errorf("failed to create seed request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", r.config.APIKey)
		req.Header.Set("x-api-hmac", r.computeHMAC(bodyBytes))

		resp, err = r.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		break
	}

	if resp == nil {
		return nil, fmt.Errorf("%w: request failed after %d retries: %v", ErrExhausted, retryCount, lastErr)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read seed response: %v", ErrExhausted, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: seed service returned status %d", ErrExhausted, resp.StatusCode)
	}

	var parsed seedsResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse seed response: %v", ErrExhausted, err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("%w: %v", ErrExhausted, parsed.Error)
	}
	if len(parsed.Seeds) < count {
		return nil, fmt.Errorf("%w: requested %d seeds, got %d", ErrExhausted, count, len(parsed.Seeds))
	}

	return parsed.Seeds[:count], nil
}
