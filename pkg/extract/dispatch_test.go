package extract

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sisyphuswastaken/web-scraper/pkg/common"
)

type extractFunc func(ctx context.Context, chunk common.Chunk) ([]common.RawMention, []common.RawRelationship, error)

func (f extractFunc) Extract(ctx context.Context, chunk common.Chunk) ([]common.RawMention, []common.RawRelationship, error) {
	return f(ctx, chunk)
}

func makeChunks(n int) []common.Chunk {
	chunks := make([]common.Chunk, n)
	for i := range chunks {
		chunks[i] = common.Chunk{Index: i, Text: "chunk text"}
	}
	return chunks
}

func TestExtractAll_OrderedAndTagged(t *testing.T) {
	extractor := extractFunc(func(ctx context.Context, chunk common.Chunk) ([]common.RawMention, []common.RawRelationship, error) {
		// later chunks finish first
		time.Sleep(time.Duration(6-chunk.Index) * time.Millisecond)
		return []common.RawMention{{Text: "Kenya", Type: "LOCATION", ChunkIndex: -1}},
			[]common.RawRelationship{{SourceText: "Obama", Relation: "visited", TargetText: "Kenya", ChunkIndex: -1}},
			nil
	})

	d := NewDispatcher(DispatcherParams{Extractor: extractor, Parallel: 4, MaxRetries: 1})
	results, stats, err := d.ExtractAll(context.Background(), makeChunks(6))
	if err != nil {
		t.Fatalf("ExtractAll() error = %v", err)
	}

	if stats != (DispatchStats{Chunks: 6, Processed: 6}) {
		t.Fatalf("stats = %+v", stats)
	}
	for i, r := range results {
		if r.ChunkIndex != i {
			t.Fatalf("results[%d].ChunkIndex = %d", i, r.ChunkIndex)
		}
		if r.Mentions[0].ChunkIndex != i || r.Relationships[0].ChunkIndex != i {
			t.Fatalf("results[%d] not tagged with its chunk index: %+v", i, r)
		}
	}
}

func TestExtractAll_RetriesTransientErrors(t *testing.T) {
	var mu sync.Mutex
	calls := make(map[int]int)
	extractor := extractFunc(func(ctx context.Context, chunk common.Chunk) ([]common.RawMention, []common.RawRelationship, error) {
		mu.Lock()
		calls[chunk.Index]++
		n := calls[chunk.Index]
		mu.Unlock()
		if n == 1 {
			return nil, nil, errors.New("rate limited")
		}
		return []common.RawMention{{Text: "Obama", Type: "PERSON"}}, nil, nil
	})

	d := NewDispatcher(DispatcherParams{Extractor: extractor, Parallel: 2, MaxRetries: 2})
	results, stats, err := d.ExtractAll(context.Background(), makeChunks(3))
	if err != nil {
		t.Fatalf("ExtractAll() error = %v", err)
	}
	if stats.Failed != 0 || stats.Processed != 3 {
		t.Fatalf("stats = %+v", stats)
	}
	for _, r := range results {
		if r.Err != nil || len(r.Mentions) != 1 {
			t.Fatalf("unexpected result: %+v", r)
		}
	}
}

func TestExtractAll_PartialFailure(t *testing.T) {
	extractor := extractFunc(func(ctx context.Context, chunk common.Chunk) ([]common.RawMention, []common.RawRelationship, error) {
		if chunk.Index == 1 {
			return []common.RawMention{{Text: "ignored"}}, nil, errors.New("bad response")
		}
		return []common.RawMention{{Text: "Kenya", Type: "LOCATION"}}, nil, nil
	})

	var reported atomic.Int32
	d := NewDispatcher(DispatcherParams{
		Extractor:  extractor,
		Parallel:   3,
		MaxRetries: 2,
		OnChunk: func(chunkIndex int, err error) {
			reported.Add(1)
			if (chunkIndex == 1) != (err != nil) {
				t.Errorf("OnChunk(%d, %v) reported the wrong outcome", chunkIndex, err)
			}
		},
	})

	results, stats, err := d.ExtractAll(context.Background(), makeChunks(3))
	if err != nil {
		t.Fatalf("ExtractAll() error = %v", err)
	}
	if stats != (DispatchStats{Chunks: 3, Processed: 2, Failed: 1}) {
		t.Fatalf("stats = %+v", stats)
	}
	if results[1].Err == nil || len(results[1].Mentions) != 0 {
		t.Fatalf("failed chunk must carry Err and no mentions: %+v", results[1])
	}
	if got := reported.Load(); got != 3 {
		t.Fatalf("OnChunk called %d times, want 3", got)
	}
}

func TestExtractAll_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	extractor := extractFunc(func(ctx context.Context, chunk common.Chunk) ([]common.RawMention, []common.RawRelationship, error) {
		return nil, nil, ctx.Err()
	})

	d := NewDispatcher(DispatcherParams{Extractor: extractor, Parallel: 2})
	_, _, err := d.ExtractAll(ctx, makeChunks(4))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExtractAll_RespectsParallelLimit(t *testing.T) {
	var current, peak atomic.Int32
	extractor := extractFunc(func(ctx context.Context, chunk common.Chunk) ([]common.RawMention, []common.RawRelationship, error) {
		n := current.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		current.Add(-1)
		return nil, nil, nil
	})

	d := NewDispatcher(DispatcherParams{Extractor: extractor, Parallel: 2})
	if _, _, err := d.ExtractAll(context.Background(), makeChunks(8)); err != nil {
		t.Fatalf("ExtractAll() error = %v", err)
	}
	if got := peak.Load(); got > 2 {
		t.Fatalf("peak concurrency = %d, want <= 2", got)
	}
}

func TestExtractAll_Empty(t *testing.T) {
	d := NewDispatcher(DispatcherParams{Extractor: extractFunc(nil)})
	results, stats, err := d.ExtractAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("ExtractAll() error = %v", err)
	}
	if len(results) != 0 || stats != (DispatchStats{}) {
		t.Fatalf("expected empty result, got %+v %+v", results, stats)
	}
}
