package extract

import (
	"context"
	"sort"
	"time"

	"github.com/sisyphuswastaken/web-scraper/internal/util"
	"github.com/sisyphuswastaken/web-scraper/pkg/common"
	"github.com/sisyphuswastaken/web-scraper/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// DispatchStats counts chunk outcomes for one ExtractAll call.
type DispatchStats struct {
	Chunks    int `json:"chunks"`
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// DispatcherParams configures a Dispatcher.
//
// Parallel bounds concurrent Extract calls (default 1) and MaxRetries the
// attempts per chunk (default 1). Backoff is the wait before the first
// retry and doubles afterwards. OnChunk, when set, is called once per chunk
// with its final error.
type DispatcherParams struct {
	Extractor  Extractor
	Parallel   int
	MaxRetries int
	Backoff    time.Duration
	OnChunk    func(chunkIndex int, err error)
}

// Dispatcher fans chunks out to an Extractor.
type Dispatcher struct {
	extractor  Extractor
	parallel   int
	maxRetries int
	backoff    time.Duration
	onChunk    func(int, error)
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(params DispatcherParams) *Dispatcher {
	parallel := params.Parallel
	if parallel <= 0 {
		parallel = 1
	}
	return &Dispatcher{
		extractor:  params.Extractor,
		parallel:   parallel,
		maxRetries: params.MaxRetries,
		backoff:    params.Backoff,
		onChunk:    params.OnChunk,
	}
}

type chunkResult struct {
	mentions  []common.RawMention
	relations []common.RawRelationship
}

// ExtractAll runs the extractor over every chunk and returns one
// ChunkExtraction per chunk, sorted by chunk index. A chunk that still fails
// after retries is returned with Err set and no mentions or relationships.
// The returned error is non-nil only when ctx is done.
func (d *Dispatcher) ExtractAll(
	ctx context.Context,
	chunks []common.Chunk,
) ([]common.ChunkExtraction, DispatchStats, error) {
	stats := DispatchStats{Chunks: len(chunks)}
	results := make([]common.ChunkExtraction, len(chunks))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(d.parallel)
	for i, chunk := range chunks {
		g.Go(func() error {
			res, err := util.RetryWithBackoff(gCtx, d.maxRetries, d.backoff, func(ctx context.Context) (chunkResult, error) {
				m, r, err := d.extractor.Extract(ctx, chunk)
				return chunkResult{mentions: m, relations: r}, err
			})
			if err != nil && util.IsContextError(err) && ctx.Err() != nil {
				return err
			}

			out := common.ChunkExtraction{ChunkIndex: chunk.Index}
			if err != nil {
				logger.Warn("[Extract] Chunk failed", "chunk", chunk.Index, "err", err)
				out.Err = err
			} else {
				out.Mentions = tag(res.mentions, chunk.Index)
				out.Relationships = tagRelations(res.relations, chunk.Index)
			}
			results[i] = out

			if d.onChunk != nil {
				d.onChunk(chunk.Index, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, DispatchStats{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, DispatchStats{}, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].ChunkIndex < results[j].ChunkIndex
	})

	for _, r := range results {
		if r.Err != nil {
			stats.Failed++
		} else {
			stats.Processed++
		}
	}

	logger.Debug("[Extract] Extraction finished", "chunks", stats.Chunks, "processed", stats.Processed, "failed", stats.Failed)

	return results, stats, nil
}

func tag(mentions []common.RawMention, index int) []common.RawMention {
	out := make([]common.RawMention, len(mentions))
	for i, m := range mentions {
		m.ChunkIndex = index
		out[i] = m
	}
	return out
}

func tagRelations(relations []common.RawRelationship, index int) []common.RawRelationship {
	out := make([]common.RawRelationship, len(relations))
	for i, r := range relations {
		r.ChunkIndex = index
		out[i] = r
	}
	return out
}
