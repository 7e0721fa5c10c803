package providers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const OpenAIName = "openai"

// OpenAIConfig holds configuration for the OpenAI-compatible client.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string // optional, for compatible endpoints and tests
	Timeout    time.Duration
	HTTPClient *http.Client // optional (tests)
}

// OpenAIClient implements Client against any OpenAI-compatible chat
// completions endpoint using the official SDK. SDK-level retries are
// disabled; every failure surfaces to the runner on the first attempt.
type OpenAIClient struct {
	client openai.Client
}

// NewOpenAIClient creates a new OpenAI client.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIClient{client: openai.NewClient(opts...)}
}

// Name returns the client identifier.
func (c *OpenAIClient) Name() string {
	return OpenAIName
}

// UploadImage returns a data-URL reference for the image. Chat completions
// have no file store for vision inputs, so the "upload" is local encoding;
// the reference is still built once per run and reused across requests.
func (c *OpenAIClient) UploadImage(ctx context.Context, path, mimeType string) (*FileRef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", path, err)
	}

	return &FileRef{
		URI:      "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data),
		MimeType: mimeType,
	}, nil
}

// Generate sends one chat completion call.
func (c *OpenAIClient) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	start := time.Now()

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	result := &GenerateResult{
		RequestID: requestID,
		Provider:  OpenAIName,
		ModelUsed: req.Model,
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Turns))
	for _, turn := range req.Turns {
		if turn.Role == RoleModel {
			// Model turns carry only text (the worked example answers).
			var text strings.Builder
			for _, part := range turn.Parts {
				text.WriteString(part.Text)
			}
			messages = append(messages, openai.AssistantMessage(text.String()))
			continue
		}

		parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(turn.Parts))
		for _, part := range turn.Parts {
			if part.File != nil {
				parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: part.File.URI,
				}))
			} else {
				parts = append(parts, openai.TextContentPart(part.Text))
			}
		}
		messages = append(messages, openai.UserMessage(parts))
	}

	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(req.Model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	}

	if req.ResponseMIMEType == MIMETypeJSON {
		if len(req.ResponseSchema) > 0 {
			var schemaDoc any
			if err := json.Unmarshal(req.ResponseSchema, &schemaDoc); err != nil {
				result.Success = false
				result.ErrorType = "schema_error"
				result.ErrorMessage = err.Error()
				result.ExecutionTime = time.Since(start)
				return result, fmt.Errorf("invalid response schema: %w", err)
			}
			params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
					JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
						Name:   "extraction",
						Schema: schemaDoc,
					},
				},
			}
		} else {
			params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
			}
		}
	}

	// Chat completions take a coarse effort level rather than a token budget;
	// any positive budget maps to the lowest effort.
	if req.ThinkingBudget > 0 {
		params.ReasoningEffort = shared.ReasoningEffortLow
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		result.Success = false
		result.ErrorType = "http_error"
		result.ErrorMessage = err.Error()
		result.ExecutionTime = time.Since(start)
		return result, err
	}

	result.Usage = TokenUsage{
		CandidatesTokenCount: int(resp.Usage.CompletionTokens),
		ThoughtsTokenCount:   int(resp.Usage.CompletionTokensDetails.ReasoningTokens),
		PromptTokenCount:     int(resp.Usage.PromptTokens),
		TotalTokenCount:      int(resp.Usage.TotalTokens),
	}
	if resp.Model != "" {
		result.ModelUsed = resp.Model
	}

	result.Success = true
	if len(resp.Choices) > 0 {
		result.Text = resp.Choices[0].Message.Content
	}
	result.ExecutionTime = time.Since(start)
	return result, nil
}

// Verify interface
var _ Client = (*OpenAIClient)(nil)
