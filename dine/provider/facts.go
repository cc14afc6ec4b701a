package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// FactsContext localizes a facts query.
type FactsContext struct {
	Locale    string   `json:"locale,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// FactsRequest is the secondary-provider payload.
type FactsRequest struct {
	Query   string       `json:"query"`
	Context FactsContext `json:"context"`
}

// FactsResponse is the authoritative factual answer plus topic tags.
type FactsResponse struct {
	Text string   `json:"text"`
	Tags []string `json:"tags,omitempty"`
}

// FactsClient calls the restaurant-knowledge endpoint (secondary provider).
type FactsClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewFactsClient constructs a client for the given base URL.
func NewFactsClient(base string, opts ...Option) *FactsClient {
	c := &FactsClient{
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

// Query performs one blocking facts lookup. The returned error, when
// non-nil, is always a *Error carrying the failure kind.
func (c *FactsClient) Query(ctx context.Context, req FactsRequest) (*FactsResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out *FactsResponse
	err := withNetworkRetry(ctx, func() error {
		var err error
		out, err = c.queryOnce(ctx, req)
		return err
	})
	return out, err
}

func (c *FactsClient) queryOnce(ctx context.Context, req FactsRequest) (*FactsResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &Error{Kind: KindMalformed, Detail: "encode request", cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/query", bytes.NewBuffer(payload))
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Detail: "build request", cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Detail: "facts query", cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Kind: kindForStatus(resp.StatusCode), Status: resp.StatusCode, Detail: "facts query"}
	}

	var fr FactsResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		return nil, &Error{Kind: KindMalformed, Detail: "decode response", cause: err}
	}
	if strings.TrimSpace(fr.Text) == "" {
		return nil, &Error{Kind: KindMalformed, Detail: "empty facts text"}
	}
	return &fr, nil
}
