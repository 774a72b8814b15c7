package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(srv *httptest.Server) *Client {
	return &Client{
		APIKey:     "test-key",
		Model:      "gemini-2.5-flash",
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	}
}

func TestGenerateText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("api key header %q", got)
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if len(req.Contents) != 1 || req.Contents[0].Parts[0].Text != "hello" {
			t.Errorf("unexpected prompt payload: %+v", req)
		}

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"world"}]}}]}`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv).GenerateText(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "world" {
		t.Fatalf("got %q", got)
	}
}

func TestGenerateTextRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).GenerateText(context.Background(), "hello")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestGenerateTextEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).GenerateText(context.Background(), "hello")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestGenerateTextMissingAPIKey(t *testing.T) {
	c := &Client{Model: "gemini-2.5-flash"}
	if _, err := c.GenerateText(context.Background(), "hello"); err == nil {
		t.Fatal("expected an error without an api key")
	}
}
