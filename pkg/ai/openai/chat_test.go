package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type testExtraction struct {
	Entities []struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"entities"`
}

func newTestServer(t *testing.T, content string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if seen != nil {
			_ = json.NewDecoder(r.Body).Decode(seen)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1,
			"model":   "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
			"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 8, "total_tokens": 20},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerateCompletionWithFormat(t *testing.T) {
	var body map[string]any
	srv := newTestServer(t, `{"entities":[{"name":"Kenya","type":"LOCATION"}]}`, &body)

	client := NewGraphOpenAIClient(NewGraphOpenAIClientParams{
		ExtractionModel: "test-model",
		ChatURL:         srv.URL + "/v1/",
		ChatKey:         "test-key",
	})

	var out testExtraction
	err := client.GenerateCompletionWithFormat(context.Background(), "extract", "Extract entities", "Obama visited Kenya.", &out)
	if err != nil {
		t.Fatalf("GenerateCompletionWithFormat() error = %v", err)
	}
	if len(out.Entities) != 1 || out.Entities[0].Name != "Kenya" {
		t.Fatalf("unexpected output: %+v", out)
	}
	if body["model"] != "test-model" {
		t.Fatalf("request model = %v, want test-model", body["model"])
	}
	if _, ok := body["response_format"]; !ok {
		t.Fatal("request is missing response_format")
	}

	m := client.GetMetrics()
	if m.Requests != 1 || m.TotalTokens != 20 {
		t.Fatalf("unexpected metrics: %+v", m)
	}
}

func TestMissingKey(t *testing.T) {
	client := NewGraphOpenAIClient(NewGraphOpenAIClientParams{ExtractionModel: "test-model"})

	var out testExtraction
	err := client.GenerateCompletionWithFormat(context.Background(), "extract", "", "text", &out)
	if !errors.Is(err, ErrNoClient) {
		t.Fatalf("expected ErrNoClient, got %v", err)
	}
}
