package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultOpenAIURL = "https://api.openai.com/v1/chat/completions"
	openAIModel      = "gpt-3.5-turbo"
)

// openAIClient is a client for the OpenAI chat completions API.
type openAIClient struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

// NewOpenAIClient creates a new OpenAI API client.
func NewOpenAIClient(apiKey string) TextGenerator {
	return &openAIClient{
		apiKey: apiKey,
		apiURL: defaultOpenAIURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewOpenAIClientWithURL creates a client pointed at a custom endpoint.
// Useful for OpenAI-compatible providers and for tests.
func NewOpenAIClientWithURL(apiKey, apiURL string) TextGenerator {
	c := NewOpenAIClient(apiKey).(*openAIClient)
	c.apiURL = apiURL
	return c
}

// ModelName returns the model identifier used for completions.
func (c *openAIClient) ModelName() string {
	return openAIModel
}

// Complete sends the prompts to the model and returns the generated text.
func (c *openAIClient) Complete(ctx context.Context, systemPrompt, userPrompt string, opts Options) (string, error) {
	messages := []map[string]string{}
	if systemPrompt != "" {
		messages = append(messages, map[string]string{
			"role":    "system",
			"content": systemPrompt,
		})
	}
	messages = append(messages, map[string]string{
		"role":    "user",
		"content": userPrompt,
	})

	reqBody := map[string]interface{}{
		"model":       openAIModel,
		"messages":    messages,
		"temperature": opts.Temperature,
	}
	if opts.MaxTokens > 0 {
		reqBody["max_tokens"] = opts.MaxTokens
	}
	if opts.JSONMode {
		reqBody["response_format"] = map[string]string{"type": "json_object"}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewBuffer(jsonBody))
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
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("openai api error: status=%d body=%s", resp.StatusCode, string(bodyBytes))
	}

	var openAIResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&openAIResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(openAIResp.Choices) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	return openAIResp.Choices[0].Message.Content, nil
}
