// Package openai implements the llm.Chatter contract against any
// OpenAI-compatible chat-completions endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/promptlane/agentd/llm"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4.1-mini"
	defaultTimeout = 60 * time.Second
)

// Config holds connection settings for the chat-completions endpoint.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client calls a chat-completions endpoint over HTTP.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClient validates the config and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("openai: missing API key")
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type chatPayload struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Tools       []llm.ToolDef `json:"tools,omitempty"`
	ToolChoice  string        `json:"tool_choice,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
}

// wireMessage is the chat-completions message shape. Assistant tool calls
// are re-encoded with stringified arguments the way the API expects them.
type wireMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	Name       string         `json:"name,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
}

type wireToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type wireFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Chat implements llm.Chatter.
func (c *Client) Chat(ctx context.Context, req llm.Request) (*llm.Response, error) {
	payload, err := json.Marshal(c.buildPayload(req))
	if err != nil {
		return nil, fmt.Errorf("openai: encode request: %w", err)
	}

	endpoint := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("openai: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &llm.AdapterError{Message: "openai: request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, llm.ErrorFromStatusCode(resp.StatusCode, strings.TrimSpace(string(body)), "openai")
	}

	var decoded struct {
		Choices []struct {
			Message      map[string]any `json:"message"`
			FinishReason string         `json:"finish_reason"`
		} `json:"choices"`
		Usage *llm.Usage `json:"usage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &llm.AdapterError{Message: "openai: decode response", Cause: err}
	}
	if len(decoded.Choices) == 0 {
		return nil, &llm.AdapterError{Message: "openai: response contained no choices"}
	}

	choice := decoded.Choices[0]
	return &llm.Response{
		Message:    choice.Message,
		Usage:      decoded.Usage,
		StopReason: choice.FinishReason,
	}, nil
}

func (c *Client) buildPayload(req llm.Request) chatPayload {
	payload := chatPayload{
		Model:       c.model,
		Messages:    make([]wireMessage, 0, len(req.Messages)),
		Tools:       req.Tools,
		Temperature: req.Temperature,
	}
	if len(req.Tools) > 0 && req.ToolChoice != "" {
		payload.ToolChoice = string(req.ToolChoice)
	}

	for _, m := range req.Messages {
		wm := wireMessage{
			Role:       string(m.Role),
			Content:    m.Content,
			Name:       m.Name,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			args, err := json.Marshal(tc.Arguments)
			if err != nil {
				args = []byte("{}")
			}
			wm.ToolCalls = append(wm.ToolCalls, wireToolCall{
				ID:   tc.ID,
				Type: "function",
				Function: wireFunction{
					Name:      tc.Name,
					Arguments: string(args),
				},
			})
		}
		payload.Messages = append(payload.Messages, wm)
	}
	return payload
}
