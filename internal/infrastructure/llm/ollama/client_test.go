package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGeneratorSendsInstructionAndContent(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"response":"ok"}`))
	}))
	defer server.Close()

	client := New(server.URL, "gen", "embed")
	gen := NewGenerator(client)
	answer, err := gen.Complete(context.Background(), "classify this", "what is the policy?", false)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if answer != "ok" {
		t.Fatalf("Complete() = %q, want %q", answer, "ok")
	}
	if payload["system"] != "classify this" || payload["prompt"] != "what is the policy?" {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if _, ok := payload["options"]; ok {
		t.Fatalf("non-deterministic call must not set options, got %v", payload["options"])
	}
}

func TestGeneratorDeterministicSetsTemperatureZero(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"response":"SOPs"}`))
	}))
	defer server.Close()

	gen := NewGenerator(New(server.URL, "gen", "embed"))
	if _, err := gen.Complete(context.Background(), "sys", "query", true); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	options, ok := payload["options"].(map[string]any)
	if !ok {
		t.Fatalf("expected options in payload, got %v", payload)
	}
	if temp, ok := options["temperature"].(float64); !ok || temp != 0 {
		t.Fatalf("expected temperature 0, got %v", options["temperature"])
	}
}

func TestEmbedIncludesHTTPBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(server.URL, "gen", "embed")
	embedder := NewEmbedder(client)
	_, err := embedder.Embed(context.Background(), []string{"hello"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}
