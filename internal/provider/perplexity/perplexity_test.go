package perplexity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/llmcheck/visibility/config"
	"github.com/llmcheck/visibility/internal/scan"
)

func TestComplete(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer pplx-key" {
			t.Errorf("Authorization header got %q", got)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"According to acme.io ..."}}]}`))
	}))
	defer srv.Close()

	c := NewClient(config.ProviderConfig{
		APIKey:  "pplx-key",
		BaseURL: srv.URL,
		Model:   "sonar",
		Timeout: time.Second,
	}, "")

	if c.Model() != scan.ModelPerplexity {
		t.Fatalf("Model() got %s", c.Model())
	}
	got, err := c.Complete(context.Background(), "Where should I look?")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "According to acme.io ..." {
		t.Fatalf("Complete got %q", got)
	}
}

func TestCompleteErrorStatus(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "server error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(config.ProviderConfig{APIKey: "k", BaseURL: srv.URL, Model: "m", Timeout: time.Second}, "")
	if _, err := c.Complete(context.Background(), "q"); err == nil {
		t.Fatalf("expected error on non-200 status")
	}
}
