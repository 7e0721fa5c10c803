package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	GeminiName    = "gemini"
	GeminiBaseURL = "https://generativelanguage.googleapis.com"

	geminiAPIVersion = "v1beta"
)

// GeminiConfig holds configuration for the Gemini client.
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// GeminiClient implements Client against the Gemini REST API. Calls are
// strictly synchronous; every request gets exactly one attempt.
type GeminiClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = GeminiBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	return &GeminiClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Name returns the client identifier.
func (c *GeminiClient) Name() string {
	return GeminiName
}

// UploadImage uploads a local image via the raw media upload endpoint and
// returns the remote file reference. Handles stay valid long enough for a
// full run; there is no refresh logic.
func (c *GeminiClient) UploadImage(ctx context.Context, path, mimeType string) (*FileRef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", path, err)
	}

	url := c.baseURL + "/upload/" + geminiAPIVersion + "/files"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}

	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("X-Goog-Upload-Protocol", "raw")
	req.Header.Set("X-Goog-File-Name", filepath.Base(path))
	req.Header.Set("Content-Type", mimeType)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Gemini upload error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var uploadResp geminiUploadResponse
	if err := json.Unmarshal(respBody, &uploadResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal upload response: %w", err)
	}
	if uploadResp.File.URI == "" {
		return nil, fmt.Errorf("upload response missing file URI")
	}

	ref := &FileRef{
		URI:      uploadResp.File.URI,
		MimeType: uploadResp.File.MimeType,
	}
	if ref.MimeType == "" {
		ref.MimeType = mimeType
	}
	return ref, nil
}

// Generate sends one generateContent call.
func (c *GeminiClient) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	start := time.Now()

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	result := &GenerateResult{
		RequestID: requestID,
		Provider:  GeminiName,
		ModelUsed: req.Model,
	}

	gemReq := geminiGenerateRequest{
		Contents: make([]geminiContent, 0, len(req.Turns)),
		GenerationConfig: &geminiGenerationConfig{
			ResponseMimeType: req.ResponseMIMEType,
			Temperature:      &req.Temperature,
			ResponseSchema:   req.ResponseSchema,
		},
	}
	// Budget 0 disables thinking entirely: no thinkingConfig is sent.
	if req.ThinkingBudget > 0 {
		gemReq.GenerationConfig.ThinkingConfig = &geminiThinkingConfig{
			ThinkingBudget: req.ThinkingBudget,
		}
	}

	for _, turn := range req.Turns {
		content := geminiContent{
			Role:  turn.Role,
			Parts: make([]geminiPart, 0, len(turn.Parts)),
		}
		for _, part := range turn.Parts {
			if part.File != nil {
				content.Parts = append(content.Parts, geminiPart{
					FileData: &geminiFileData{
						MimeType: part.File.MimeType,
						FileURI:  part.File.URI,
					},
				})
			} else {
				content.Parts = append(content.Parts, geminiPart{Text: part.Text})
			}
		}
		gemReq.Contents = append(gemReq.Contents, content)
	}

	gemResp, err := c.doGenerate(ctx, req.Model, &gemReq)
	if err != nil {
		result.Success = false
		result.ErrorType = "http_error"
		result.ErrorMessage = err.Error()
		result.ExecutionTime = time.Since(start)
		return result, err
	}

	result.Usage = TokenUsage{
		CandidatesTokenCount: gemResp.UsageMetadata.CandidatesTokenCount,
		ThoughtsTokenCount:   gemResp.UsageMetadata.ThoughtsTokenCount,
		PromptTokenCount:     gemResp.UsageMetadata.PromptTokenCount,
		TotalTokenCount:      gemResp.UsageMetadata.TotalTokenCount,
	}
	if gemResp.ModelVersion != "" {
		result.ModelUsed = gemResp.ModelVersion
	}

	// Concatenate the text parts of the first candidate. The service may
	// return zero candidates or empty parts; that surfaces to the caller as
	// empty text, not an error.
	var text strings.Builder
	if len(gemResp.Candidates) > 0 {
		for _, part := range gemResp.Candidates[0].Content.Parts {
			text.WriteString(part.Text)
		}
	}

	result.Success = true
	result.Text = text.String()
	result.ExecutionTime = time.Since(start)
	return result, nil
}

// doGenerate posts the request body to {model}:generateContent.
func (c *GeminiClient) doGenerate(ctx context.Context, model string, body *geminiGenerateRequest) (*geminiGenerateResponse, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Model identifiers are resource names ("models/gemini-2.5-flash-lite");
	// accept bare names too.
	if !strings.Contains(model, "/") {
		model = "models/" + model
	}
	url := fmt.Sprintf("%s/%s/%s:generateContent", c.baseURL, geminiAPIVersion, model)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Gemini error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var gemResp geminiGenerateResponse
	if err := json.Unmarshal(respBody, &gemResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &gemResp, nil
}

// Gemini API types

type geminiGenerateRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text     string          `json:"text,omitempty"`
	FileData *geminiFileData `json:"fileData,omitempty"`
}

type geminiFileData struct {
	MimeType string `json:"mimeType"`
	FileURI  string `json:"fileUri"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string                `json:"responseMimeType,omitempty"`
	Temperature      *float64              `json:"temperature,omitempty"`
	ResponseSchema   json.RawMessage       `json:"responseSchema,omitempty"`
	ThinkingConfig   *geminiThinkingConfig `json:"thinkingConfig,omitempty"`
}

type geminiThinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

type geminiUploadResponse struct {
	File struct {
		Name     string `json:"name"`
		URI      string `json:"uri"`
		MimeType string `json:"mimeType"`
		State    string `json:"state"`
	} `json:"file"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		ThoughtsTokenCount   int `json:"thoughtsTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	ModelVersion string `json:"modelVersion"`
}

// Verify interface
var _ Client = (*GeminiClient)(nil)
