// Package openai sends analysis prompts to the OpenAI Responses API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/diillson/aws-cost-sentinel-go/internal/domain/repository"
	"github.com/diillson/aws-cost-sentinel-go/internal/shared/types"
)

const (
	DefaultBaseURL   = "https://api.openai.com/v1"
	DefaultModel     = "gpt-4.1-mini"
	DefaultMaxTokens = 800
	DefaultTimeout   = 120 * time.Second
)

// Client implements repository.TextGenerator over the Responses API.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

type responsesRequest struct {
	Model           string `json:"model"`
	Input           string `json:"input"`
	MaxOutputTokens int    `json:"max_output_tokens,omitempty"`
}

// NewClient creates a client. An empty key yields types.ErrMissingAPIKey.
func NewClient(apiKey, model, baseURL string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, types.ErrMissingAPIKey
	}
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}, nil
}

var _ repository.TextGenerator = (*Client)(nil)

// Model returns the model name sent with every request.
func (c *Client) Model() string {
	return c.model
}

// Generate posts the prompt and returns the raw response body untouched.
func (c *Client) Generate(ctx context.Context, prompt string, maxTokens int) ([]byte, error) {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	return c.makeRequest(ctx, "/responses", responsesRequest{
		Model:           c.model,
		Input:           prompt,
		MaxOutputTokens: maxTokens,
	})
}

func (c *Client) makeRequest(ctx context.Context, endpoint string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAI API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(responseBody)))
	}

	return responseBody, nil
}
