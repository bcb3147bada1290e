package graph

import (
	"github.com/sisyphuswastaken/web-scraper/pkg/common"
	"github.com/sisyphuswastaken/web-scraper/pkg/logger"
)

// BuildStats reports the work done for one article.
type BuildStats struct {
	Chunks       int            `json:"chunks"`
	FailedChunks int            `json:"failed_chunks"`
	RawEntities  int            `json:"raw_entities"`
	RawRelations int            `json:"raw_relationships"`
	Normalize    NormalizeStats `json:"normalize"`
	Merge        MergeStats     `json:"merge"`
}

// Build normalizes and merges extraction results into a graph. Extractions
// are flattened in slice order, so callers should pass them ordered by
// chunk index. Failed extractions only count towards FailedChunks.
func (g *GraphClient) Build(extractions []common.ChunkExtraction) (*KnowledgeGraph, BuildStats) {
	mentions, relations := common.Flatten(extractions)

	stats := BuildStats{
		Chunks:       len(extractions),
		RawEntities:  len(mentions),
		RawRelations: len(relations),
	}
	for _, e := range extractions {
		if e.Err != nil {
			stats.FailedChunks++
		}
	}

	entities, mentionMap, nStats := g.normalizer.Normalize(mentions)
	stats.Normalize = nStats

	kg := g.merger.Merge(entities, mentionMap, relations)
	stats.Merge = kg.Stats

	logger.Info("[Graph] Graph build completed",
		"entities", stats.Merge.Entities,
		"edges", stats.Merge.Edges,
		"unresolved", stats.Merge.Unresolved,
		"failed_chunks", stats.FailedChunks,
	)

	return kg, stats
}
