package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFactsQuery(t *testing.T) {
	var got FactsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/query" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(FactsResponse{Text: "Open 5-11pm.", Tags: []string{"hours"}})
	}))
	defer srv.Close()

	lat, lng := 40.7, -74.0
	c := NewFactsClient(srv.URL)
	resp, err := c.Query(context.Background(), FactsRequest{
		Query:   "About Lucali: what are the hours?",
		Context: FactsContext{Locale: "en-US", Latitude: &lat, Longitude: &lng},
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if resp.Text != "Open 5-11pm." || len(resp.Tags) != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if got.Context.Locale != "en-US" || got.Context.Latitude == nil || *got.Context.Latitude != 40.7 {
		t.Fatalf("context not forwarded: %+v", got.Context)
	}
}

func TestFactsErrorTaxonomy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewFactsClient(srv.URL)
	_, err := c.Query(context.Background(), FactsRequest{Query: "q"})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestFactsEmptyTextMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(FactsResponse{Text: ""})
	}))
	defer srv.Close()

	c := NewFactsClient(srv.URL)
	_, err := c.Query(context.Background(), FactsRequest{Query: "q"})
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}
