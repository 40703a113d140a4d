package ollama

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGenerate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/api/generate" {
			t.Errorf("expected /api/generate, got %s", r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected Content-Type application/json, got %q", r.Header.Get("Content-Type"))
		}

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Model != "llama3.1:8b" {
			t.Errorf("expected model llama3.1:8b, got %q", req.Model)
		}
		if req.Prompt != "hello" {
			t.Errorf("expected prompt hello, got %q", req.Prompt)
		}
		if req.Stream {
			t.Error("expected stream false")
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response{Model: req.Model, Response: "[15/01/25, 2:15 PM] Ruby: hi", Done: true})
	}))
	defer server.Close()

	c := NewClient(server.URL+"/", "llama3.1:8b", time.Second, discardLogger())

	if got := c.Generate(context.Background(), "hello"); got != "[15/01/25, 2:15 PM] Ruby: hi" {
		t.Errorf("unexpected completion %q", got)
	}
}

func TestGenerate_FailuresReturnEmpty(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(errorResponse{Error: "model not loaded"})
		}},
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("{not json"))
		}},
		{"slow", func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
			json.NewEncoder(w).Encode(response{Response: "too late"})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			c := NewClient(server.URL, "m", 100*time.Millisecond, discardLogger())

			if got := c.Generate(context.Background(), "p"); got != "" {
				t.Errorf("expected empty completion, got %q", got)
			}
		})
	}
}

func TestGenerate_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c := NewClient(url, "m", time.Second, discardLogger())
	if got := c.Generate(context.Background(), "p"); got != "" {
		t.Errorf("expected empty completion, got %q", got)
	}
}

func TestGenerateInternal_ReportsStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errorResponse{Error: "invalid model"})
	}))
	defer server.Close()

	c := NewClient(server.URL, "m", time.Second, discardLogger())
	_, err := c.generate(context.Background(), "p")
	if err == nil {
		t.Fatal("expected error for API error response")
	}
	if want := "api error 400: invalid model"; err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestNewClient_DefaultTimeout(t *testing.T) {
	c := NewClient("http://localhost:11434", "m", 0, discardLogger())
	if c.client.Timeout != DefaultTimeout {
		t.Errorf("expected default timeout %s, got %s", DefaultTimeout, c.client.Timeout)
	}
}
