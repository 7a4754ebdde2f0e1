// Package llm is the boundary to the OpenAI-compatible chat API. Everything
// above it speaks in requests and results; nothing above it imports eino.
package llm

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/cloudwego/eino-ext/components/model/openai"

	"novel-translator/internal/glossary"
	"novel-translator/internal/logger"
	"novel-translator/internal/types"
)

// Request is one chat completion request. SystemPrompt may be empty.
type Request struct {
	SystemPrompt string
	UserPrompt   string
}

// Result is a completed response plus token usage when the provider
// reported it. Usage of 0 means "not reported", not "free".
type Result struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
}

// Proposed is one glossary entry candidate returned by extraction.
type Proposed struct {
	OriginalTerm string            `json:"original_term"`
	Translation  string            `json:"translation"`
	Category     glossary.Category `json:"category"`
	Context      string            `json:"context_description,omitempty"`
}

// Client is the LLM surface the translation engine consumes.
type Client interface {
	// Translate sends one request and returns the full response.
	Translate(ctx context.Context, req Request) (*Result, error)
	// TranslateStream sends one request and invokes onDelta for each
	// content chunk as it arrives. Returns the assembled result.
	TranslateStream(ctx context.Context, req Request, onDelta func(string)) (*Result, error)
	// ProposeGlossary sends an extraction request and parses the JSON
	// array response into candidates.
	ProposeGlossary(ctx context.Context, req Request) ([]Proposed, error)
	// CountTokens estimates the token count of text locally.
	CountTokens(text string) int
}

// Settings is the slice of application settings the client needs.
type Settings interface {
	GetAPIKey() string
	GetBaseURL() string
	GetModel() string
}

type einoClient struct {
	settings Settings
}

// NewClient returns a Client backed by an eino OpenAI chat model. The model
// is created per call so settings changes take effect without restarting.
func NewClient(settings Settings) Client {
	return &einoClient{settings: settings}
}

func (c *einoClient) chatModel(ctx context.Context) (*openai.ChatModel, error) {
	apiKey := c.settings.GetAPIKey()
	if apiKey == "" {
		return nil, types.NewAppError(types.ErrAPIAuth, "no API key configured", nil)
	}

	cfg := &openai.ChatModelConfig{
		Model:  c.settings.GetModel(),
		APIKey: apiKey,
	}
	if baseURL := c.settings.GetBaseURL(); baseURL != "" {
		cfg.BaseURL = baseURL
	}

	cm, err := openai.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, types.NewAppError(types.ErrAPICall, "failed to create chat model", err)
	}
	return cm, nil
}

func buildMessages(req Request) []*schema.Message {
	var msgs []*schema.Message
	if req.SystemPrompt != "" {
		msgs = append(msgs, schema.SystemMessage(req.SystemPrompt))
	}
	return append(msgs, schema.UserMessage(req.UserPrompt))
}

func (c *einoClient) Translate(ctx context.Context, req Request) (*Result, error) {
	cm, err := c.chatModel(ctx)
	if err != nil {
		return nil, err
	}

	logger.Debug("sending chat request",
		logger.String("model", c.settings.GetModel()),
		logger.Int("prompt_chars", len(req.UserPrompt)))

	resp, err := cm.Generate(ctx, buildMessages(req))
	if err != nil {
		return nil, classifyAPIError(err)
	}
	return resultFromMessage(resp), nil
}

func (c *einoClient) TranslateStream(ctx context.Context, req Request, onDelta func(string)) (*Result, error) {
	cm, err := c.chatModel(ctx)
	if err != nil {
		return nil, err
	}

	sr, err := cm.Stream(ctx, buildMessages(req))
	if err != nil {
		return nil, classifyAPIError(err)
	}
	defer sr.Close()

	var chunks []*schema.Message
	for {
		chunk, err := sr.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, classifyAPIError(err)
		}
		chunks = append(chunks, chunk)
		if onDelta != nil && chunk.Content != "" {
			onDelta(chunk.Content)
		}
	}

	full, err := schema.ConcatMessages(chunks)
	if err != nil {
		return nil, types.NewAppError(types.ErrAPICall, "failed to assemble streamed response", err)
	}
	return resultFromMessage(full), nil
}

func (c *einoClient) ProposeGlossary(ctx context.Context, req Request) ([]Proposed, error) {
	res, err := c.Translate(ctx, req)
	if err != nil {
		return nil, err
	}
	return ParseProposedEntries(res.Content)
}

func (c *einoClient) CountTokens(text string) int {
	return EstimateTokens(text)
}

func resultFromMessage(msg *schema.Message) *Result {
	r := &Result{Content: msg.Content}
	if msg.ResponseMeta != nil && msg.ResponseMeta.Usage != nil {
		r.PromptTokens = msg.ResponseMeta.Usage.PromptTokens
		r.CompletionTokens = msg.ResponseMeta.Usage.CompletionTokens
	}
	return r
}

// classifyAPIError maps a provider or transport error onto an AppError code.
// One attempt, no retry: the caller decides what a failure means.
func classifyAPIError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return types.NewAppError(types.ErrNetwork, "API connection failed", err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "401") || strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "invalid api key") || strings.Contains(msg, "incorrect api key"):
		return types.NewAppError(types.ErrAPIAuth, "API authentication failed", err)
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "quota"):
		return types.NewAppError(types.ErrAPIRateLimit, "API rate limit exceeded", err)
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "timeout"):
		return types.NewAppError(types.ErrNetwork, "API connection failed", err)
	default:
		return types.NewAppError(types.ErrAPICall, "API request failed", err)
	}
}
