package server

import (
	"fmt"

	"github.com/sisyphuswastaken/web-scraper/internal/config"
	"github.com/sisyphuswastaken/web-scraper/internal/metrics"
	mid "github.com/sisyphuswastaken/web-scraper/internal/server/middleware"
	"github.com/sisyphuswastaken/web-scraper/pkg/ai"
	oai "github.com/sisyphuswastaken/web-scraper/pkg/ai/ollama"
	gai "github.com/sisyphuswastaken/web-scraper/pkg/ai/openai"
	"github.com/sisyphuswastaken/web-scraper/pkg/chunker"
	"github.com/sisyphuswastaken/web-scraper/pkg/extract"
	"github.com/sisyphuswastaken/web-scraper/pkg/graph"
	"github.com/sisyphuswastaken/web-scraper/pkg/logger"
	"github.com/sisyphuswastaken/web-scraper/pkg/pipeline"
	"github.com/sisyphuswastaken/web-scraper/pkg/scraper"
)

// NewAIClient creates the extraction model client selected by AI_ADAPTER.
func NewAIClient(s *config.Settings) (ai.GraphAIClient, error) {
	switch s.AIAdapter {
	case config.AdapterOllama:
		client, err := oai.NewGraphOllamaClient(oai.NewGraphOllamaClientParams{
			ExtractionModel: s.AIExtractModel,

			BaseURL: s.AIChatURL,
			ApiKey:  s.AIChatKey,

			MaxConcurrentRequests: int64(s.AIParallelReq),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
		return client, nil
	default:
		if s.AIChatKey == "" {
			logger.Warn("[Server] No AI_CHAT_KEY or OPENAI_API_KEY set, /process will fail")
		}
		return gai.NewGraphOpenAIClient(gai.NewGraphOpenAIClientParams{
			ExtractionModel: s.AIExtractModel,

			ChatURL: s.AIChatURL,
			ChatKey: s.AIChatKey,
		}), nil
	}
}

// NewApp wires the scraper, chunker, extraction adapter and graph builder
// described by s into an App.
func NewApp(s *config.Settings, client ai.GraphAIClient) (*mid.App, error) {
	c, err := chunker.NewChunker(chunker.ChunkerParams{
		Size:    s.ChunkSize,
		Overlap: s.ChunkOverlap,
		Encoder: s.ChunkEncoder,
	})
	if err != nil {
		return nil, err
	}

	g, err := graph.NewGraphClient(graph.NewGraphClientParams{
		SimilarityThreshold: s.SimilarityThreshold,
		IncludeIsolated:     s.IncludeIsolated,
	})
	if err != nil {
		return nil, err
	}

	sc := scraper.NewScraper(scraper.ScraperParams{
		Timeout:     s.RequestTimeout,
		UserAgent:   s.UserAgent,
		MinInterval: s.ScrapeMinInterval,
	})

	p, err := pipeline.NewPipeline(pipeline.PipelineParams{
		Scraper: sc,
		Chunker: c,
		Extractor: extract.NewLLMExtractor(extract.NewLLMExtractorParams{
			Client:      client,
			EntityTypes: s.EntityTypes,
			Model:       s.AIExtractModel,
			Thinking:    s.AIThinking,
		}),
		Graph:      g,
		MaxChunks:  s.MaxChunks,
		Parallel:   s.AIParallelReq,
		MaxRetries: s.AIMaxRetries,
		Backoff:    s.AIRetryBackoff,
	})
	if err != nil {
		return nil, err
	}

	app := &mid.App{
		Settings: s,
		Scraper:  sc,
		Pipeline: p,
		AI:       client,
	}

	if s.Metrics {
		rec := metrics.NewPromRecorder()
		metrics.SetRecorder(rec)
		app.Metrics = rec.Handler()
	}

	return app, nil
}
