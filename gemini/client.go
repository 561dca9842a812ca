package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// DefaultModels is the fallback priority order: cheapest/fastest first
var DefaultModels = []string{
	"gemini-2.0-flash",
	"gemini-2.0-flash-lite",
	"gemini-1.5-pro",
}

// IsFlashModel reports whether a model identifier names a flash variant
func IsFlashModel(model string) bool {
	return strings.Contains(model, "flash")
}

// GenerationConfig holds the per-call sampling parameters
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// configForModel picks generation parameters per model family. Flash models
// get a higher temperature and a lower token ceiling.
func configForModel(model string) GenerationConfig {
	if IsFlashModel(model) {
		return GenerationConfig{Temperature: 0.7, TopK: 40, TopP: 0.95, MaxOutputTokens: 2048}
	}
	return GenerationConfig{Temperature: 0.4, TopK: 32, TopP: 0.9, MaxOutputTokens: 8192}
}

// Client invokes the generative-language HTTP endpoint
type Client struct {
	baseURL    string
	models     []string
	keys       *KeyStore
	httpClient *http.Client
}

// ClientOption is a functional option for Client
type ClientOption func(*Client)

// WithBaseURL overrides the generative-language endpoint base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithModels overrides the fallback priority order
func WithModels(models []string) ClientOption {
	return func(c *Client) {
		if len(models) > 0 {
			c.models = models
		}
	}
}

// WithKeyStore sets the key store
func WithKeyStore(keys *KeyStore) ClientOption {
	return func(c *Client) {
		c.keys = keys
	}
}

// WithHTTPClient sets the HTTP client, including the per-attempt timeout
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new Gemini client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		models:     DefaultModels,
		keys:       NewKeyStore(""),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Keys returns the client's key store
func (c *Client) Keys() *KeyStore {
	return c.keys
}

// PrimaryModel returns the first model in the fallback order
func (c *Client) PrimaryModel() string {
	return c.models[0]
}

// Models returns the configured fallback order
func (c *Client) Models() []string {
	return c.models
}

type generateRequest struct {
	Contents         []requestContent `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

type requestContent struct {
	Parts []requestPart `json:"parts"`
}

type requestPart struct {
	Text string `json:"text"`
}

// Generate issues one generateContent call against a single model and
// returns the first text part of the first candidate.
func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	apiKey := c.keys.Resolve()
	if apiKey == "" {
		return "", ErrMissingAPIKey
	}

	reqBody := generateRequest{
		Contents:         []requestContent{{Parts: []requestPart{{Text: prompt}}}},
		GenerationConfig: configForModel(model),
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, url.QueryEscape(apiKey))
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", c.parseErrorResponse(model, resp, bodyBytes)
	}

	var apiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason,omitempty"`
		} `json:"candidates"`
	}

	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return "", fmt.Errorf("%w: failed to decode response body", ErrMalformedResponse)
	}

	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w (model %s)", ErrMalformedResponse, model)
	}

	if reason := apiResp.Candidates[0].FinishReason; reason != "" && reason != "STOP" {
		log.Printf("Warning: model %s finished with reason %s", model, reason)
	}

	text := apiResp.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", fmt.Errorf("%w (model %s): empty text part", ErrMalformedResponse, model)
	}

	return text, nil
}

// parseErrorResponse turns a non-200 response into a structured APIError.
// Three error subtypes get distinct messages: permission-denied, quota
// exhaustion, and generic provider errors; anything else degrades to the
// HTTP status line.
func (c *Client) parseErrorResponse(model string, resp *http.Response, body []byte) error {
	var envelope struct {
		Error struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		} `json:"error"`
	}

	apiErr := &APIError{Model: model, HTTPStatus: resp.StatusCode}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Status = envelope.Error.Status
		apiErr.Message = envelope.Error.Message
	} else {
		apiErr.Message = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return apiErr
}

// GenerateWithFallback tries each configured model in priority order and
// returns the first success. Trials are strictly sequential with immediate
// abandonment of a model on any error; no backoff, no jitter. When every
// model fails the aggregate error names each attempted model and its reason.
func (c *Client) GenerateWithFallback(ctx context.Context, prompt string) (string, error) {
	attempts := make([]ModelAttempt, 0, len(c.models))

	for _, model := range c.models {
		text, err := c.Generate(ctx, model, prompt)
		if err == nil {
			return text, nil
		}
		// A missing key fails every model identically; don't burn the chain
		if errors.Is(err, ErrMissingAPIKey) {
			return "", err
		}
		log.Printf("Model %s failed, trying next: %v", model, err)
		attempts = append(attempts, ModelAttempt{Model: model, Err: err})

		if ctx.Err() != nil {
			break
		}
	}

	return "", &AllModelsFailedError{Attempts: attempts}
}
