package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sisyphuswastaken/web-scraper/internal/metrics"
	"github.com/sisyphuswastaken/web-scraper/pkg/chunker"
	"github.com/sisyphuswastaken/web-scraper/pkg/cleaner"
	"github.com/sisyphuswastaken/web-scraper/pkg/common"
	"github.com/sisyphuswastaken/web-scraper/pkg/extract"
	"github.com/sisyphuswastaken/web-scraper/pkg/graph"
	"github.com/sisyphuswastaken/web-scraper/pkg/logger"
	"github.com/sisyphuswastaken/web-scraper/pkg/scraper"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	ErrNoText           = errors.New("could not extract article")
	ErrExtractionFailed = errors.New("extraction failed for every chunk")
)

// Stage names used for timing metrics.
const (
	StageScrape  = "scrape"
	StageClean   = "clean"
	StageChunk   = "chunk"
	StageExtract = "extract"
	StageBuild   = "build"
)

// ArticleScraper fetches an article by URL.
type ArticleScraper interface {
	Scrape(ctx context.Context, rawURL string) (*scraper.Article, error)
}

// Stats summarizes one pipeline run.
type Stats struct {
	Chunks           int   `json:"chunks"`
	ProcessedChunks  int   `json:"processed_chunks"`
	FailedChunks     int   `json:"failed_chunks"`
	RawEntities      int   `json:"raw_entities"`
	Entities         int   `json:"entities"`
	RawRelationships int   `json:"raw_relationships"`
	Nodes            int   `json:"nodes"`
	Edges            int   `json:"edges"`
	Unresolved       int   `json:"unresolved"`
	Malformed        int   `json:"malformed"`
	DurationMs       int64 `json:"duration_ms"`
}

// Result is the outcome of processing one article.
type Result struct {
	RequestID string                `json:"request_id"`
	Article   *scraper.Article      `json:"article"`
	Graph     *graph.KnowledgeGraph `json:"graph"`
	Stats     Stats                 `json:"stats"`
}

// PipelineParams configures a Pipeline. Scraper, Chunker, Extractor and
// Graph are required.
//
// MaxChunks caps the chunks sent for extraction, 0 means no cap. Parallel,
// MaxRetries and Backoff are passed to the extraction Dispatcher.
type PipelineParams struct {
	Scraper   ArticleScraper
	Chunker   *chunker.Chunker
	Extractor extract.Extractor
	Graph     *graph.GraphClient

	MaxChunks  int
	Parallel   int
	MaxRetries int
	Backoff    time.Duration
}

// Pipeline turns an article URL into a knowledge graph:
// scrape, clean, chunk, extract, normalize and merge. It holds no per-run
// state and is safe for concurrent use.
type Pipeline struct {
	scraper    ArticleScraper
	chunker    *chunker.Chunker
	extractor  extract.Extractor
	graph      *graph.GraphClient
	maxChunks  int
	parallel   int
	maxRetries int
	backoff    time.Duration
}

// NewPipeline creates a Pipeline.
//
// Example:
//
//	p, err := pipeline.NewPipeline(pipeline.PipelineParams{
//		Scraper:   scraper.NewScraper(scraper.ScraperParams{}),
//		Chunker:   c,
//		Extractor: extractor,
//		Graph:     graphClient,
//		Parallel:  4,
//	})
//	res, err := p.Process(ctx, "https://example.com/article")
func NewPipeline(params PipelineParams) (*Pipeline, error) {
	switch {
	case params.Scraper == nil:
		return nil, errors.New("pipeline: scraper is required")
	case params.Chunker == nil:
		return nil, errors.New("pipeline: chunker is required")
	case params.Extractor == nil:
		return nil, errors.New("pipeline: extractor is required")
	case params.Graph == nil:
		return nil, errors.New("pipeline: graph client is required")
	case params.MaxChunks < 0:
		return nil, fmt.Errorf("pipeline: max chunks must not be negative, got %d", params.MaxChunks)
	}

	maxRetries := params.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	return &Pipeline{
		scraper:    params.Scraper,
		chunker:    params.Chunker,
		extractor:  params.Extractor,
		graph:      params.Graph,
		maxChunks:  params.MaxChunks,
		parallel:   params.Parallel,
		maxRetries: maxRetries,
		backoff:    params.Backoff,
	}, nil
}

// Process scrapes rawURL and builds its knowledge graph. It returns
// scraper.ErrInvalidURL or scraper.ErrNoContent from the scrape stage,
// ErrNoText when cleaning leaves nothing, and ErrExtractionFailed when no
// chunk could be extracted. Individual chunk failures are tolerated and
// reported in Stats.
func (p *Pipeline) Process(ctx context.Context, rawURL string) (res *Result, err error) {
	start := time.Now()
	defer func() {
		metrics.Default().IncArticlesProcessed(err == nil)
	}()

	done := metrics.TimeStage(StageScrape)
	article, err := p.scraper.Scrape(ctx, rawURL)
	done()
	if err != nil {
		return nil, err
	}

	res, err = p.processArticle(ctx, article)
	if err != nil {
		return nil, err
	}
	res.Stats.DurationMs = time.Since(start).Milliseconds()

	logger.Info("[Pipeline] Article processed",
		"request_id", res.RequestID,
		"url", article.URL,
		"chunks", res.Stats.Chunks,
		"nodes", res.Stats.Nodes,
		"edges", res.Stats.Edges,
		"duration_ms", res.Stats.DurationMs,
	)

	return res, nil
}

// ProcessArticle builds the graph for an already fetched article.
func (p *Pipeline) ProcessArticle(ctx context.Context, article *scraper.Article) (res *Result, err error) {
	start := time.Now()
	defer func() {
		metrics.Default().IncArticlesProcessed(err == nil)
	}()

	res, err = p.processArticle(ctx, article)
	if err != nil {
		return nil, err
	}
	res.Stats.DurationMs = time.Since(start).Milliseconds()
	return res, nil
}

func (p *Pipeline) processArticle(ctx context.Context, article *scraper.Article) (*Result, error) {
	requestID, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate request id: %w", err)
	}

	done := metrics.TimeStage(StageClean)
	text := p.Clean(article.Text)
	done()
	if text == "" {
		return nil, ErrNoText
	}

	done = metrics.TimeStage(StageChunk)
	chunks, err := p.Chunk(text)
	done()
	if err != nil {
		return nil, err
	}

	done = metrics.TimeStage(StageExtract)
	extractions, dStats, err := p.Extract(ctx, chunks)
	done()
	if err != nil {
		return nil, err
	}
	if dStats.Chunks > 0 && dStats.Processed == 0 {
		return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, extractions[0].Err)
	}

	done = metrics.TimeStage(StageBuild)
	kg, bStats := p.Build(extractions)
	done()

	metrics.Default().AddUnresolvedRelationships(bStats.Merge.Unresolved)

	return &Result{
		RequestID: requestID,
		Article:   article,
		Graph:     kg,
		Stats: Stats{
			Chunks:           len(chunks),
			ProcessedChunks:  dStats.Processed,
			FailedChunks:     dStats.Failed,
			RawEntities:      bStats.RawEntities,
			Entities:         bStats.Normalize.Entities,
			RawRelationships: bStats.RawRelations,
			Nodes:            len(kg.Entities),
			Edges:            len(kg.Edges),
			Unresolved:       bStats.Merge.Unresolved,
			Malformed:        bStats.Merge.Malformed,
		},
	}, nil
}

// Clean strips page chrome and promotional content from article text.
func (p *Pipeline) Clean(text string) string {
	return cleaner.RemovePromotional(cleaner.Clean(text))
}

// Chunk splits cleaned text and applies the MaxChunks cap.
func (p *Pipeline) Chunk(text string) ([]common.Chunk, error) {
	chunks, err := p.chunker.Chunk(text)
	if err != nil {
		return nil, err
	}
	if p.maxChunks > 0 && len(chunks) > p.maxChunks {
		logger.Warn("[Pipeline] Chunk limit reached", "chunks", len(chunks), "limit", p.maxChunks)
		chunks = chunks[:p.maxChunks]
	}
	return chunks, nil
}

// Extract runs the extraction adapter over chunks.
func (p *Pipeline) Extract(ctx context.Context, chunks []common.Chunk) ([]common.ChunkExtraction, extract.DispatchStats, error) {
	d := extract.NewDispatcher(extract.DispatcherParams{
		Extractor:  p.extractor,
		Parallel:   p.parallel,
		MaxRetries: p.maxRetries,
		Backoff:    p.backoff,
		OnChunk: func(_ int, err error) {
			metrics.Default().IncExtractionChunks(err == nil)
		},
	})
	return d.ExtractAll(ctx, chunks)
}

// Build normalizes and merges extraction results.
func (p *Pipeline) Build(extractions []common.ChunkExtraction) (*graph.KnowledgeGraph, graph.BuildStats) {
	return p.graph.Build(extractions)
}
