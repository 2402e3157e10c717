package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ChatMessage is one turn of an LLM conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LLMClient is an interface for chat completion against an LLM backend.
type LLMClient interface {
	// Chat sends the messages and returns the assistant's reply text.
	Chat(ctx context.Context, messages []ChatMessage) (string, error)
	// Model returns the configured model name, for reporting.
	Model() string
}

// OpenAIChatClient talks to any OpenAI-compatible chat completion API
// (OpenAI itself, ChatGLM local or cloud deployments, and so on).
type OpenAIChatClient struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client
}

// NewOpenAIChatClient creates a new OpenAIChatClient. An empty apiKey is
// allowed; some local deployments don't check it.
func NewOpenAIChatClient(baseURL, apiKey, model string) *OpenAIChatClient {
	return &OpenAIChatClient{
		baseURL:     baseURL,
		apiKey:      apiKey,
		model:       model,
		temperature: 0.7,
		httpClient:  &http.Client{Timeout: 120 * time.Second},
	}
}

// Model returns the configured model name.
func (c *OpenAIChatClient) Model() string {
	return c.model
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
}

// Chat sends a chat completion request and returns the reply text.
func (c *OpenAIChatClient) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	requestBody, err := json.Marshal(chatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach llm backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm backend returned status %d", resp.StatusCode)
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("llm backend returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
