package providers

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

const MockClientName = "mock"

// MockClient is a Client for testing.
type MockClient struct {
	// Configurable behavior
	Latency      time.Duration
	UploadErr    error
	GenerateErr  error
	ResponseText string
	Usage        TokenUsage

	// ResponseFunc, when set, overrides ResponseText/Usage per request.
	ResponseFunc func(req *GenerateRequest) (*GenerateResult, error)

	// State
	requestCount atomic.Int64
	uploadCount  atomic.Int64

	mu       sync.Mutex
	requests []*GenerateRequest
}

// NewMockClient creates a new mock client with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{
		ResponseText: `{"mock": true}`,
		Usage: TokenUsage{
			CandidatesTokenCount: 8,
			PromptTokenCount:     10,
			TotalTokenCount:      18,
		},
	}
}

// Name returns the client identifier.
func (c *MockClient) Name() string {
	return MockClientName
}

// UploadImage returns a synthetic reference without touching the filesystem.
func (c *MockClient) UploadImage(ctx context.Context, path, mimeType string) (*FileRef, error) {
	c.uploadCount.Add(1)
	if c.UploadErr != nil {
		return nil, c.UploadErr
	}
	return &FileRef{
		URI:      "mock://" + filepath.Base(path),
		MimeType: mimeType,
	}, nil
}

// Generate returns the configured response.
func (c *MockClient) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	start := time.Now()
	count := c.requestCount.Add(1)

	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()

	if c.Latency > 0 {
		select {
		case <-time.After(c.Latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if c.ResponseFunc != nil {
		return c.ResponseFunc(req)
	}

	result := &GenerateResult{
		RequestID: req.RequestID,
		Provider:  MockClientName,
		ModelUsed: req.Model,
	}
	if result.RequestID == "" {
		result.RequestID = fmt.Sprintf("mock-%d", count)
	}

	if c.GenerateErr != nil {
		result.Success = false
		result.ErrorType = "mock_failure"
		result.ErrorMessage = c.GenerateErr.Error()
		result.ExecutionTime = time.Since(start)
		return result, c.GenerateErr
	}

	result.Success = true
	result.Text = c.ResponseText
	result.Usage = c.Usage
	result.ExecutionTime = time.Since(start)
	return result, nil
}

// RequestCount returns the number of generation requests made.
func (c *MockClient) RequestCount() int64 {
	return c.requestCount.Load()
}

// UploadCount returns the number of uploads made.
func (c *MockClient) UploadCount() int64 {
	return c.uploadCount.Load()
}

// Requests returns a copy of the recorded generation requests.
func (c *MockClient) Requests() []*GenerateRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*GenerateRequest, len(c.requests))
	copy(out, c.requests)
	return out
}

// Reset clears recorded state.
func (c *MockClient) Reset() {
	c.requestCount.Store(0)
	c.uploadCount.Store(0)
	c.mu.Lock()
	c.requests = nil
	c.mu.Unlock()
}

// Verify interface
var _ Client = (*MockClient)(nil)
