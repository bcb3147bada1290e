package config

import (
	"errors"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/sisyphuswastaken/web-scraper/pkg/chunker"
	"github.com/sisyphuswastaken/web-scraper/pkg/common"
	"github.com/sisyphuswastaken/web-scraper/pkg/graph"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"API_HOST", "API_PORT", "ALLOWED_ORIGINS", "METRICS", "DEBUG", "LOG_JSON",
		"CHUNK_SIZE", "CHUNK_OVERLAP", "CHUNK_ENCODER", "MAX_CHUNKS",
		"SIMILARITY_THRESHOLD", "INCLUDE_ISOLATED", "ENTITY_TYPES",
		"REQUEST_TIMEOUT", "USER_AGENT", "SCRAPE_MIN_INTERVAL",
		"AI_ADAPTER", "AI_CHAT_URL", "AI_CHAT_KEY", "OPENAI_API_KEY",
		"AI_CHAT_EXTRACT_MODEL", "AI_THINKING", "AI_PARALLEL_REQ", "AI_MAX_RETRIES", "AI_RETRY_BACKOFF",
	} {
		// t.Setenv restores the previous value when the test ends.
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	s := Load()

	if s.Addr() != "0.0.0.0:8000" {
		t.Fatalf("Addr() = %q", s.Addr())
	}
	if !reflect.DeepEqual(s.AllowedOrigins, defaultAllowedOrigins) {
		t.Fatalf("AllowedOrigins = %v", s.AllowedOrigins)
	}
	if s.ChunkSize != chunker.DefaultSize || s.ChunkOverlap != chunker.DefaultOverlap {
		t.Fatalf("chunking = %d/%d", s.ChunkSize, s.ChunkOverlap)
	}
	if s.SimilarityThreshold != graph.DefaultSimilarityThreshold {
		t.Fatalf("SimilarityThreshold = %v", s.SimilarityThreshold)
	}
	if !s.IncludeIsolated {
		t.Fatal("IncludeIsolated should default to true")
	}
	if s.RequestTimeout != 30*time.Second {
		t.Fatalf("RequestTimeout = %v", s.RequestTimeout)
	}
	if s.AIAdapter != AdapterOpenAI || s.AIParallelReq != 4 || s.AIMaxRetries != 3 {
		t.Fatalf("ai settings = %q %d %d", s.AIAdapter, s.AIParallelReq, s.AIMaxRetries)
	}
	if !reflect.DeepEqual(s.EntityTypes, common.DefaultEntityTypes) {
		t.Fatalf("EntityTypes = %v", s.EntityTypes)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")
	t.Setenv("SIMILARITY_THRESHOLD", "90")
	t.Setenv("REQUEST_TIMEOUT", "5")
	t.Setenv("AI_ADAPTER", "Ollama")
	t.Setenv("OPENAI_API_KEY", "sk-fallback")
	t.Setenv("ENTITY_TYPES", "person, location")

	s := Load()

	if s.APIPort != 9090 {
		t.Fatalf("APIPort = %d", s.APIPort)
	}
	if !reflect.DeepEqual(s.AllowedOrigins, []string{"https://app.example.com", "https://admin.example.com"}) {
		t.Fatalf("AllowedOrigins = %v", s.AllowedOrigins)
	}
	if s.SimilarityThreshold != 90 {
		t.Fatalf("SimilarityThreshold = %v", s.SimilarityThreshold)
	}
	if s.RequestTimeout != 5*time.Second {
		t.Fatalf("RequestTimeout = %v", s.RequestTimeout)
	}
	if s.AIAdapter != AdapterOllama {
		t.Fatalf("AIAdapter = %q", s.AIAdapter)
	}
	if s.AIChatKey != "sk-fallback" {
		t.Fatalf("AIChatKey = %q", s.AIChatKey)
	}
	if !reflect.DeepEqual(s.EntityTypes, []common.EntityType{"PERSON", "LOCATION"}) {
		t.Fatalf("EntityTypes = %v", s.EntityTypes)
	}

	t.Setenv("AI_CHAT_KEY", "sk-primary")
	if got := Load().AIChatKey; got != "sk-primary" {
		t.Fatalf("AIChatKey = %q, want AI_CHAT_KEY to win", got)
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name    string
		modify  func(s *Settings)
		ok      bool
		wantErr error
	}{
		{name: "valid", modify: func(s *Settings) {}, ok: true},
		{name: "threshold zero", modify: func(s *Settings) { s.SimilarityThreshold = 0 }, ok: true},
		{name: "threshold hundred", modify: func(s *Settings) { s.SimilarityThreshold = 100 }, ok: true},
		{name: "threshold negative", modify: func(s *Settings) { s.SimilarityThreshold = -1 }, wantErr: graph.ErrInvalidThreshold},
		{name: "threshold too high", modify: func(s *Settings) { s.SimilarityThreshold = 101 }, wantErr: graph.ErrInvalidThreshold},
		{name: "zero chunk size", modify: func(s *Settings) { s.ChunkSize = 0 }, wantErr: chunker.ErrInvalidSize},
		{name: "overlap equals size", modify: func(s *Settings) { s.ChunkOverlap = s.ChunkSize }, wantErr: chunker.ErrInvalidOverlap},
		{name: "negative overlap", modify: func(s *Settings) { s.ChunkOverlap = -1 }, wantErr: chunker.ErrInvalidOverlap},
		{name: "bad port", modify: func(s *Settings) { s.APIPort = 0 }},
		{name: "negative max chunks", modify: func(s *Settings) { s.MaxChunks = -1 }},
		{name: "no parallelism", modify: func(s *Settings) { s.AIParallelReq = 0 }},
		{name: "no tries", modify: func(s *Settings) { s.AIMaxRetries = 0 }},
		{name: "unknown adapter", modify: func(s *Settings) { s.AIAdapter = "claude" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Load()
			tt.modify(s)
			err := s.Validate()

			if tt.ok {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() error = nil, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
