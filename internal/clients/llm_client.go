package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/privacyx/guardian/internal/domain"
	"github.com/privacyx/guardian/pkg/retrier"
)

const (
	defaultTimeout     = 60 * time.Second
	defaultMaxRetries  = 2
	defaultRetryDelay  = 2 * time.Second
	defaultTemperature = 0.7
)

var (
	// ErrAPIKeyMissing is returned without any network call when no credential is configured.
	ErrAPIKeyMissing = errors.New("LLM API key is empty")
	// ErrNoReply means the service answered but carried no message.
	ErrNoReply = errors.New("LLM API returned no choices")
)

// APIError non-success answer of the completion service.
type APIError struct {
	StatusCode int
	Message    string
	Type       string
	Code       string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("LLM API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("LLM API returned status %d: %s (type: %s, code: %s)", e.StatusCode, e.Message, e.Type, e.Code)
}

// LLMClient sends a conversation to a chat completion service and returns the reply.
type LLMClient interface {
	Complete(ctx context.Context, messages []domain.ChatMessage) (domain.ChatMessage, error)
}

// OpenAICompatibleClient talks to OpenAI-compatible /chat/completions endpoints.
type OpenAICompatibleClient struct {
	apiURL      string
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client
	retrier     *retrier.Retrier
}

// ClientOption configures an OpenAICompatibleClient.
type ClientOption func(*OpenAICompatibleClient)

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) ClientOption {
	return func(c *OpenAICompatibleClient) {
		c.temperature = t
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *OpenAICompatibleClient) {
		c.httpClient = hc
	}
}

// WithRetrier replaces the retry policy.
func WithRetrier(r *retrier.Retrier) ClientOption {
	return func(c *OpenAICompatibleClient) {
		c.retrier = r
	}
}

// NewOpenAICompatibleClient creates a new client for OpenAI-compatible APIs
func NewOpenAICompatibleClient(apiURL, apiKey, model string, opts ...ClientOption) *OpenAICompatibleClient {
	c := &OpenAICompatibleClient{
		apiURL:      apiURL,
		apiKey:      apiKey,
		model:       model,
		temperature: defaultTemperature,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.retrier == nil {
		c.retrier = retrier.New(
			retrier.WithMaxRetries(defaultMaxRetries),
			retrier.WithInitialInterval(defaultRetryDelay),
			retrier.WithRetryIf(IsRetryable),
		)
	}
	return c
}

// Model returns the configured model name.
func (c *OpenAICompatibleClient) Model() string {
	return c.model
}

type chatRequest struct {
	Model       string               `json:"model"`
	Messages    []domain.ChatMessage `json:"messages"`
	Temperature float64              `json:"temperature"`
}

type chatResponse struct {
	ID      string    `json:"id"`
	Model   string    `json:"model"`
	Choices []choice  `json:"choices"`
	Error   *apiError `json:"error,omitempty"`
}

type choice struct {
	Index        int                `json:"index"`
	Message      domain.ChatMessage `json:"message"`
	FinishReason string             `json:"finish_reason"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

// Complete sends the whole conversation and returns the first choice's message.
func (c *OpenAICompatibleClient) Complete(ctx context.Context, messages []domain.ChatMessage) (domain.ChatMessage, error) {
	if c.apiKey == "" {
		return domain.ChatMessage{}, ErrAPIKeyMissing
	}

	reqBody := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
	}

	reply, err := retrier.DoWithData(c.retrier, ctx, func(ctx context.Context) (domain.ChatMessage, error) {
		return c.sendRequest(ctx, reqBody)
	})
	if err != nil {
		return domain.ChatMessage{}, err
	}
	return reply, nil
}

func (c *OpenAICompatibleClient) sendRequest(ctx context.Context, reqBody chatRequest) (domain.ChatMessage, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return domain.ChatMessage{}, errors.Wrap(err, "failed to marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return domain.ChatMessage{}, errors.Wrap(err, "failed to create HTTP request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.ChatMessage{}, errors.Wrap(err, "HTTP request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.ChatMessage{}, errors.Wrap(err, "failed to read response body")
	}

	var chatResp chatResponse
	decodeErr := json.Unmarshal(body, &chatResp)

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if decodeErr == nil && chatResp.Error != nil {
			apiErr.Message = chatResp.Error.Message
			apiErr.Type = chatResp.Error.Type
			apiErr.Code = errorCode(chatResp.Error.Code)
		}
		return domain.ChatMessage{}, apiErr
	}

	if decodeErr != nil {
		return domain.ChatMessage{}, errors.Wrap(decodeErr, "failed to unmarshal response")
	}

	if chatResp.Error != nil {
		return domain.ChatMessage{}, &APIError{
			StatusCode: resp.StatusCode,
			Message:    chatResp.Error.Message,
			Type:       chatResp.Error.Type,
			Code:       errorCode(chatResp.Error.Code),
		}
	}

	if len(chatResp.Choices) == 0 {
		return domain.ChatMessage{}, ErrNoReply
	}

	return chatResp.Choices[0].Message, nil
}

// errorCode renders the code field, which providers send either as string or number.
func errorCode(code any) string {
	if code == nil {
		return ""
	}
	return fmt.Sprint(code)
}

// IsRetryable reports whether another attempt may succeed.
// Missing credentials, empty replies and client-side API errors are final.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrAPIKeyMissing) || errors.Is(err, ErrNoReply) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError
	}
	return true
}
