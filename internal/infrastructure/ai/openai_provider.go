package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	obs "github.com/wisdomindex/wealth_service/pkg/metrics"
)

// OpenAIProvider implements Provider against any OpenAI-compatible
// chat-completions endpoint.
type OpenAIProvider struct {
	config     ProviderConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
	tracer     trace.Tracer
}

// openAIRequest represents the request format for the OpenAI API
type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// openAIResponse represents the response format from the OpenAI API
type openAIResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message      openAIMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// NewOpenAIProvider creates a new OpenAI-compatible chat provider
func NewOpenAIProvider(config ProviderConfig, logger *zap.Logger) *OpenAIProvider {
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}

	return &OpenAIProvider{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		// 50 requests per minute with small bursts
		limiter: rate.NewLimiter(rate.Every(time.Minute/50), 5),
		logger:  logger,
		tracer:  otel.Tracer("ai.openai"),
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// ChatCompletion performs a chat completion request
func (p *OpenAIProvider) ChatCompletion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	ctx, span := p.tracer.Start(ctx, "openai.chat_completion",
		trace.WithAttributes(
			attribute.String("ai.model", p.config.Model),
			attribute.Int("ai.message_count", len(req.Messages)),
		))
	defer span.End()

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, &ProviderError{
			Provider:  p.Name(),
			Code:      ErrorCodeRateLimit,
			Message:   fmt.Sprintf("rate limit wait failed: %v", err),
			Retryable: true,
		}
	}

	start := time.Now()
	apiReq := p.buildRequest(req)

	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, &ProviderError{
			Provider: p.Name(),
			Code:     ErrorCodeInvalidRequest,
			Message:  fmt.Sprintf("failed to marshal request: %v", err),
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, &ProviderError{
			Provider: p.Name(),
			Code:     ErrorCodeInvalidRequest,
			Message:  fmt.Sprintf("failed to create request: %v", err),
		}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	resp, err := p.httpClient.Do(httpReq)
	duration := time.Since(start)
	obs.RecordExternalAPICall(p.Name(), "chat_completion", statusLabel(resp, err), duration.Seconds())
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, &ProviderError{
				Provider:  p.Name(),
				Code:      ErrorCodeTimeout,
				Message:   "request timed out",
				Retryable: true,
			}
		}
		return nil, &ProviderError{
			Provider:  p.Name(),
			Code:      ErrorCodeUnavailable,
			Message:   fmt.Sprintf("request failed: %v", err),
			Retryable: true,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{
			Provider:  p.Name(),
			Code:      ErrorCodeServerError,
			Message:   fmt.Sprintf("failed to read response: %v", err),
			Retryable: true,
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, p.handleHTTPError(resp.StatusCode, respBody)
	}

	var apiResp openAIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, &ProviderError{
			Provider: p.Name(),
			Code:     ErrorCodeServerError,
			Message:  fmt.Sprintf("failed to parse response: %v", err),
		}
	}

	if len(apiResp.Choices) == 0 {
		return nil, &ProviderError{
			Provider: p.Name(),
			Code:     ErrorCodeServerError,
			Message:  "response contained no choices",
		}
	}

	choice := apiResp.Choices[0]
	span.SetAttributes(
		attribute.Int("ai.tokens_used", apiResp.Usage.TotalTokens),
		attribute.String("ai.finish_reason", choice.FinishReason),
	)

	p.logger.Debug("chat completion succeeded",
		zap.String("model", apiResp.Model),
		zap.Int("tokens_used", apiResp.Usage.TotalTokens),
		zap.Duration("duration", duration))

	return &ChatResponse{
		Content:      choice.Message.Content,
		TokensUsed:   apiResp.Usage.TotalTokens,
		Provider:     p.Name(),
		FinishReason: choice.FinishReason,
		Model:        apiResp.Model,
		Duration:     duration,
	}, nil
}

func (p *OpenAIProvider) buildRequest(req *ChatRequest) openAIRequest {
	messages := make([]openAIMessage, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: req.SystemPrompt})
	}
	for _, m := range req.Messages {
		messages = append(messages, openAIMessage{Role: m.Role, Content: m.Content})
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = p.config.Temperature
	}

	return openAIRequest{
		Model:       p.config.Model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}

func (p *OpenAIProvider) handleHTTPError(statusCode int, body []byte) *ProviderError {
	var apiResp openAIResponse
	message := fmt.Sprintf("HTTP %d", statusCode)
	if err := json.Unmarshal(body, &apiResp); err == nil && apiResp.Error != nil {
		message = apiResp.Error.Message
	}

	perr := &ProviderError{
		Provider: p.Name(),
		Message:  message,
	}

	switch statusCode {
	case http.StatusTooManyRequests:
		perr.Code = ErrorCodeRateLimit
		perr.Retryable = true
	case http.StatusUnauthorized, http.StatusForbidden:
		perr.Code = ErrorCodeAuthentication
	case http.StatusBadRequest:
		perr.Code = ErrorCodeInvalidRequest
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		perr.Code = ErrorCodeUnavailable
		perr.Retryable = true
	default:
		perr.Code = ErrorCodeServerError
		perr.Retryable = statusCode >= 500
	}

	return perr
}

func statusLabel(resp *http.Response, err error) string {
	if err != nil || resp == nil {
		return "error"
	}
	return fmt.Sprintf("%d", resp.StatusCode)
}
