// Package providers holds the generation-service clients used by the
// experiment harness. A client uploads each image once, returning a reusable
// reference, and answers synchronous generation calls over role-tagged turns.
package providers

import (
	"context"
	"encoding/json"
	"time"
)

// Roles for conversation turns.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// MIMETypeJSON is the response MIME type requested for structured extraction.
const MIMETypeJSON = "application/json"

// FileRef is an opaque handle for an uploaded image, reusable across every
// request in a run. Depending on the provider it is either a remote file URI
// or an inline data URL.
type FileRef struct {
	URI      string `json:"uri"`
	MimeType string `json:"mime_type"`
}

// Part is one element of a turn: an image reference or literal text.
type Part struct {
	Text string   `json:"text,omitempty"`
	File *FileRef `json:"file,omitempty"`
}

// TextPart builds a literal text part.
func TextPart(text string) Part { return Part{Text: text} }

// FilePart builds an image-reference part.
func FilePart(ref *FileRef) Part { return Part{File: ref} }

// Turn is a single role-tagged entry in a conversation.
type Turn struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// GenerateRequest is a request for one generation call.
type GenerateRequest struct {
	// Required
	Model string
	Turns []Turn

	// Generation parameters
	Temperature      float64
	ResponseMIMEType string
	ResponseSchema   json.RawMessage // optional output schema constraint
	ThinkingBudget   int             // internal reasoning token allowance; 0 disables thinking

	// Request tracking
	RequestID string
}

// TokenUsage mirrors the service's usage counters for one call.
type TokenUsage struct {
	CandidatesTokenCount int `json:"candidates_token_count"`
	ThoughtsTokenCount   int `json:"thoughts_token_count"`
	PromptTokenCount     int `json:"prompt_token_count"`
	TotalTokenCount      int `json:"total_token_count"`
}

// GenerateResult is the complete response from a generation call.
type GenerateResult struct {
	// Response content
	Text  string     `json:"text"`
	Usage TokenUsage `json:"usage"`

	// Provider info
	Provider  string `json:"provider"`
	ModelUsed string `json:"model_used"`

	// Request tracking
	RequestID     string        `json:"request_id"`
	ExecutionTime time.Duration `json:"execution_time"`

	// Success/error
	Success      bool   `json:"success"`
	ErrorType    string `json:"error_type,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Client is the external generation-service boundary.
type Client interface {
	// Name returns the client identifier (e.g., "gemini").
	Name() string

	// UploadImage uploads a local image and returns a reusable reference.
	UploadImage(ctx context.Context, path, mimeType string) (*FileRef, error)

	// Generate sends one synchronous generation call.
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error)
}
