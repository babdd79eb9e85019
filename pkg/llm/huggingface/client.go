package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/user/termtrace/pkg/llm"
)

// Client implements the llm.Provider interface for the HuggingFace
// inference API. Unlike the chat-shaped providers it takes a single input
// string, so the chat messages are folded into one block of text.
type Client struct {
	config     *llm.Config
	httpClient *http.Client
}

// New creates a new HuggingFace inference client. The config's BaseURL
// must already point at the model endpoint.
func New(config *llm.Config) *Client {
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// inferenceRequest is the HuggingFace inference request body.
type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceParameters struct {
	MaxNewTokens int `json:"max_new_tokens,omitempty"`
}

// inferenceResult is one element of the response array.
type inferenceResult struct {
	SummaryText   string `json:"summary_text"`
	GeneratedText string `json:"generated_text"`
}

// Complete folds the messages into one input and returns the model's text.
func (c *Client) Complete(ctx context.Context, messages []llm.Message) (*llm.Response, error) {
	var parts []string
	for _, msg := range messages {
		parts = append(parts, msg.Content)
	}

	reqBody := inferenceRequest{
		Inputs: strings.Join(parts, "\n\n"),
	}
	if c.config.MaxTokens > 0 {
		reqBody.Parameters.MaxNewTokens = c.config.MaxTokens
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var results []inferenceResult
	if err := json.Unmarshal(respBody, &results); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("empty inference response")
	}

	content := results[0].SummaryText
	if content == "" {
		content = results[0].GeneratedText
	}
	return &llm.Response{Content: content}, nil
}
