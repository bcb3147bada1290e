package config

import (
	"fmt"
	"math"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/sisyphuswastaken/web-scraper/internal/util"
	"github.com/sisyphuswastaken/web-scraper/pkg/chunker"
	"github.com/sisyphuswastaken/web-scraper/pkg/common"
	"github.com/sisyphuswastaken/web-scraper/pkg/graph"
	"github.com/sisyphuswastaken/web-scraper/pkg/scraper"
)

const (
	AdapterOpenAI = "openai"
	AdapterOllama = "ollama"
)

var defaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173",
}

// Settings is the runtime configuration of the service, read from the
// environment (and a .env file when present).
type Settings struct {
	APIHost        string
	APIPort        int
	AllowedOrigins []string
	Metrics        bool

	Debug   bool
	LogJSON bool

	ChunkSize    int
	ChunkOverlap int
	ChunkEncoder string
	MaxChunks    int

	SimilarityThreshold float64
	IncludeIsolated     bool
	EntityTypes         []common.EntityType

	RequestTimeout    time.Duration
	UserAgent         string
	ScrapeMinInterval time.Duration

	AIAdapter      string
	AIChatURL      string
	AIChatKey      string
	AIExtractModel string
	AIThinking     string
	AIParallelReq  int
	AIMaxRetries   int
	AIRetryBackoff time.Duration
}

// Load reads Settings from the environment, applying defaults for unset
// keys. It does not validate; call Validate before use.
func Load() *Settings {
	chatKey := util.GetEnv("AI_CHAT_KEY")
	if chatKey == "" {
		chatKey = util.GetEnv("OPENAI_API_KEY")
	}

	var entityTypes []common.EntityType
	for _, t := range util.GetEnvList("ENTITY_TYPES", nil) {
		entityTypes = append(entityTypes, common.EntityType(t).Normalize())
	}
	if len(entityTypes) == 0 {
		entityTypes = common.DefaultEntityTypes
	}

	return &Settings{
		APIHost:        util.GetEnvString("API_HOST", "0.0.0.0"),
		APIPort:        util.GetEnvInt("API_PORT", 8000),
		AllowedOrigins: util.GetEnvList("ALLOWED_ORIGINS", defaultAllowedOrigins),
		Metrics:        util.GetEnvBool("METRICS", false),

		Debug:   util.GetEnvBool("DEBUG", false),
		LogJSON: util.GetEnvBool("LOG_JSON", false),

		ChunkSize:    util.GetEnvInt("CHUNK_SIZE", chunker.DefaultSize),
		ChunkOverlap: util.GetEnvInt("CHUNK_OVERLAP", chunker.DefaultOverlap),
		ChunkEncoder: util.GetEnv("CHUNK_ENCODER"),
		MaxChunks:    util.GetEnvInt("MAX_CHUNKS", 0),

		SimilarityThreshold: util.GetEnvNumeric("SIMILARITY_THRESHOLD", graph.DefaultSimilarityThreshold),
		IncludeIsolated:     util.GetEnvBool("INCLUDE_ISOLATED", true),
		EntityTypes:         entityTypes,

		RequestTimeout:    util.GetEnvDuration("REQUEST_TIMEOUT", scraper.DefaultTimeout),
		UserAgent:         util.GetEnvString("USER_AGENT", scraper.DefaultUserAgent),
		ScrapeMinInterval: util.GetEnvDuration("SCRAPE_MIN_INTERVAL", scraper.DefaultMinInterval),

		AIAdapter:      strings.ToLower(util.GetEnvString("AI_ADAPTER", AdapterOpenAI)),
		AIChatURL:      util.GetEnv("AI_CHAT_URL"),
		AIChatKey:      chatKey,
		AIExtractModel: util.GetEnv("AI_CHAT_EXTRACT_MODEL"),
		AIThinking:     util.GetEnv("AI_THINKING"),
		AIParallelReq:  util.GetEnvInt("AI_PARALLEL_REQ", 4),
		AIMaxRetries:   util.GetEnvInt("AI_MAX_RETRIES", 3),
		AIRetryBackoff: util.GetEnvDuration("AI_RETRY_BACKOFF", time.Second),
	}
}

// Validate reports the first setting that would make the service unusable.
func (s *Settings) Validate() error {
	if s.APIPort < 1 || s.APIPort > 65535 {
		return fmt.Errorf("invalid config: API_PORT %d out of range", s.APIPort)
	}
	if math.IsNaN(s.SimilarityThreshold) || s.SimilarityThreshold < 0 || s.SimilarityThreshold > 100 {
		return fmt.Errorf("invalid config: SIMILARITY_THRESHOLD %v: %w", s.SimilarityThreshold, graph.ErrInvalidThreshold)
	}
	if s.ChunkSize <= 0 {
		return fmt.Errorf("invalid config: CHUNK_SIZE %d: %w", s.ChunkSize, chunker.ErrInvalidSize)
	}
	if s.ChunkOverlap < 0 || s.ChunkOverlap >= s.ChunkSize {
		return fmt.Errorf("invalid config: CHUNK_OVERLAP %d: %w", s.ChunkOverlap, chunker.ErrInvalidOverlap)
	}
	if s.MaxChunks < 0 {
		return fmt.Errorf("invalid config: MAX_CHUNKS must not be negative")
	}
	if s.RequestTimeout <= 0 {
		return fmt.Errorf("invalid config: REQUEST_TIMEOUT must be positive")
	}
	if s.AIParallelReq < 1 {
		return fmt.Errorf("invalid config: AI_PARALLEL_REQ must be at least 1")
	}
	if s.AIMaxRetries < 1 {
		return fmt.Errorf("invalid config: AI_MAX_RETRIES must be at least 1")
	}
	switch s.AIAdapter {
	case AdapterOpenAI, AdapterOllama:
	default:
		return fmt.Errorf("invalid config: unknown AI_ADAPTER %q", s.AIAdapter)
	}

	return nil
}

// Addr is the listen address for the HTTP server.
func (s *Settings) Addr() string {
	return net.JoinHostPort(s.APIHost, strconv.Itoa(s.APIPort))
}
