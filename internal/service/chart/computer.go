package chart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/zhouzirui/z-bazi/backend/internal/model/bazi"
)

// Computer is the chart computation backend.
type Computer interface {
	Compute(ctx context.Context, instant time.Time, gender bazi.Gender, timezone string) (RawResult, error)
}

// ErrNotConfigured is returned when no computation backend is available.
var ErrNotConfigured = errors.New("chart computation backend not configured")

// HTTPComputer calls a remote chart service with a JSON body.
type HTTPComputer struct {
	endpoint string
	client   *http.Client
}

// NewHTTPComputer creates a client for endpoint. timeout <= 0 means no client-side timeout.
func NewHTTPComputer(endpoint string, timeout time.Duration) *HTTPComputer {
	return &HTTPComputer{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type computeRequest struct {
	Instant  string `json:"instant"`
	Gender   string `json:"gender"`
	Timezone string `json:"timezone"`
}

// Compute posts the birth instant and decodes the response document.
func (c *HTTPComputer) Compute(ctx context.Context, instant time.Time, gender bazi.Gender, timezone string) (RawResult, error) {
	if c == nil || c.endpoint == "" {
		return RawResult{}, ErrNotConfigured
	}

	body, err := json.Marshal(computeRequest{
		Instant:  instant.UTC().Format(time.RFC3339),
		Gender:   string(gender),
		Timezone: timezone,
	})
	if err != nil {
		return RawResult{}, fmt.Errorf("encode chart request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return RawResult{}, fmt.Errorf("build chart request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return RawResult{}, fmt.Errorf("chart service request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return RawResult{}, fmt.Errorf("read chart response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return RawResult{}, fmt.Errorf("chart service returned status %d", resp.StatusCode)
	}

	result, err := DecodeRawResult(payload)
	if err != nil {
		return RawResult{}, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("component", "chart").
		Int("bytes", len(payload)).
		Msg("chart computed")
	return result, nil
}

// FileComputer replays a recorded computation result from disk.
type FileComputer struct {
	Path string
}

// Compute ignores the birth parameters and returns the file content.
func (c FileComputer) Compute(_ context.Context, _ time.Time, _ bazi.Gender, _ string) (RawResult, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return RawResult{}, fmt.Errorf("read chart file: %w", err)
	}
	return DecodeRawResult(data)
}

// StaticComputer always returns the same result.
type StaticComputer struct {
	Result RawResult
	Err    error
}

// Compute returns the configured result.
func (c StaticComputer) Compute(_ context.Context, _ time.Time, _ bazi.Gender, _ string) (RawResult, error) {
	return c.Result, c.Err
}
