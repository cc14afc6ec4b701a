package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// Turn mirrors one history entry in the chat completion payload.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the primary-provider payload: system prompt, prior turns,
// and the new question.
type ChatRequest struct {
	SystemPrompt string `json:"systemPrompt,omitempty"`
	History      []Turn `json:"history,omitempty"`
	Question     string `json:"question"`
}

type chatResponse struct {
	Text string `json:"text"`
}

// ChatClient calls the conversational LLM endpoint (primary provider).
type ChatClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewChatClient constructs a client for the given base URL.
func NewChatClient(base string, opts ...Option) *ChatClient {
	c := &ChatClient{
		baseURL: strings.TrimRight(base, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	cfg := clientConfig{httpc: &c.http, apiKey: &c.apiKey}
	if debugEnabled() {
		opts = append(opts, WithDebugLogging(true))
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			panic(err)
		}
	}
	return c
}

// Complete performs one blocking chat completion. The returned error, when
// non-nil, is always a *Error carrying the failure kind.
func (c *ChatClient) Complete(ctx context.Context, req ChatRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var text string
	err := withNetworkRetry(ctx, func() error {
		var err error
		text, err = c.completeOnce(ctx, req)
		return err
	})
	return text, err
}

func (c *ChatClient) completeOnce(ctx context.Context, req ChatRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", &Error{Kind: KindMalformed, Detail: "encode request", cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat", bytes.NewBuffer(payload))
	if err != nil {
		return "", &Error{Kind: KindNetwork, Detail: "build request", cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", &Error{Kind: KindNetwork, Detail: "chat completion", cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &Error{Kind: kindForStatus(resp.StatusCode), Status: resp.StatusCode, Detail: "chat completion"}
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", &Error{Kind: KindMalformed, Detail: "decode response", cause: err}
	}
	if strings.TrimSpace(cr.Text) == "" {
		return "", &Error{Kind: KindMalformed, Detail: "empty completion text"}
	}
	return cr.Text, nil
}
