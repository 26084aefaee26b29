package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestVisionClient_Process(t *testing.T) {
	t.Run("successful OCR", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}

			var req map[string]any
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("failed to decode request: %v", err)
			}
			if req["model"] != "gpt-4o-mini" {
				t.Errorf("model = %v", req["model"])
			}

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"id":    "chatcmpl-1",
				"model": "gpt-4o-mini",
				"choices": []map[string]any{
					{
						"index": 0,
						"message": map[string]any{
							"role":    "assistant",
							"content": "# Invoice\n\nTotal: $42.00",
						},
						"finish_reason": "stop",
					},
				},
				"usage": map[string]any{
					"prompt_tokens":     100,
					"completion_tokens": 20,
					"total_tokens":      120,
				},
			})
		}))
		defer server.Close()

		client := NewVisionClient(VisionConfig{
			APIKey:  "test-key",
			BaseURL: server.URL,
		})

		result, err := client.Process(context.Background(), &Request{
			Document: []byte("fake image data"),
			Filename: "invoice.png",
		})
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if result.Provider != VisionName {
			t.Errorf("Provider = %q", result.Provider)
		}
		if len(result.Pages) != 1 {
			t.Fatalf("expected 1 page, got %d", len(result.Pages))
		}
		if result.Markdown() != "# Invoice\n\nTotal: $42.00" {
			t.Errorf("unexpected markdown: %q", result.Markdown())
		}
		if result.Usage.PagesProcessed != 1 {
			t.Errorf("PagesProcessed = %d", result.Usage.PagesProcessed)
		}
	})

	t.Run("rejects PDF input", func(t *testing.T) {
		client := NewVisionClient(VisionConfig{APIKey: "test-key"})

		_, err := client.Process(context.Background(), &Request{
			Document: []byte("%PDF-1.4"),
			Filename: "report.pdf",
		})
		if err == nil {
			t.Fatal("expected error")
		}
		if KindOf(err) != KindUnsupportedFormat {
			t.Errorf("kind = %v, want unsupported_format", KindOf(err))
		}
	})

	t.Run("authentication error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{
					"message": "Incorrect API key provided",
					"type":    "invalid_request_error",
				},
			})
		}))
		defer server.Close()

		client := NewVisionClient(VisionConfig{
			APIKey:     "bad-key",
			BaseURL:    server.URL,
			MaxRetries: 1,
		})

		_, err := client.Process(context.Background(), &Request{
			Document: []byte("fake"),
			Filename: "scan.png",
		})
		if err == nil {
			t.Fatal("expected error")
		}
		if KindOf(err) != KindAuthentication {
			t.Errorf("kind = %v, want authentication", KindOf(err))
		}
	})

	t.Run("empty content is a service error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"id":    "chatcmpl-2",
				"model": "gpt-4o-mini",
				"choices": []map[string]any{
					{
						"index":         0,
						"message":       map[string]any{"role": "assistant", "content": ""},
						"finish_reason": "stop",
					},
				},
			})
		}))
		defer server.Close()

		client := NewVisionClient(VisionConfig{APIKey: "test-key", BaseURL: server.URL})

		_, err := client.Process(context.Background(), &Request{
			Document: []byte("fake"),
			Filename: "scan.png",
		})
		if err == nil {
			t.Fatal("expected error")
		}
		if KindOf(err) != KindService {
			t.Errorf("kind = %v, want service", KindOf(err))
		}
	})
}
