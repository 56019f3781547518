package perplexity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/llmcheck/visibility/config"
	"github.com/llmcheck/visibility/internal/scan"
)

const defaultAPIURL = "https://api.perplexity.ai/chat/completions"

// Client calls the Perplexity chat-completions API (OpenAI-compatible wire
// format, different host and auth).
type Client struct {
	apiKey      string
	apiURL      string
	model       string
	temperature float64
	maxTokens   int
	suffix      string
	httpClient  *http.Client
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewClient creates a new Perplexity client from provider config.
func NewClient(cfg config.ProviderConfig, suffix string) *Client {
	apiURL := cfg.BaseURL
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:      cfg.APIKey,
		apiURL:      apiURL,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		suffix:      suffix,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// Model implements scan.Provider.
func (c *Client) Model() scan.Model { return scan.ModelPerplexity }

// Complete sends one prompt and returns the raw response text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	requestBody := request{
		Model:       c.model,
		Messages:    []message{{Role: "user", Content: prompt + c.suffix}},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status: %d", resp.StatusCode)
	}

	var pplxResp response
	if err := json.NewDecoder(resp.Body).Decode(&pplxResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(pplxResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return pplxResp.Choices[0].Message.Content, nil
}
