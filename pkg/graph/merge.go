package graph

import (
	"strings"

	"github.com/sisyphuswastaken/web-scraper/pkg/common"
	"github.com/sisyphuswastaken/web-scraper/pkg/logger"
)

// trivialRelations are labels that carry no information when source and
// target are the same entity.
var trivialRelations = map[string]struct{}{
	"":              {},
	"is":            {},
	"same as":       {},
	"same_as":       {},
	"alias":         {},
	"alias of":      {},
	"also known as": {},
	"aka":           {},
	"a.k.a.":        {},
	"equals":        {},
	"=":             {},
}

// MergerParams configures a Merger.
//
// IncludeIsolated keeps entities that no surviving edge references.
type MergerParams struct {
	IncludeIsolated bool
}

// DefaultMergerParams keeps isolated entities visible.
func DefaultMergerParams() MergerParams {
	return MergerParams{IncludeIsolated: true}
}

// Merger resolves raw relationships to canonical entities and collapses
// duplicates into weighted edges.
type Merger struct {
	includeIsolated bool
}

// NewMerger creates a Merger.
func NewMerger(params MergerParams) *Merger {
	return &Merger{includeIsolated: params.IncludeIsolated}
}

type edgeKey struct {
	source   EntityID
	relation string
	target   EntityID
}

// Merge builds the graph for one article. Bad relationships never make it
// fail: entries without endpoints are counted as malformed, endpoints that
// do not resolve through mentions are counted as unresolved, and
// self-loops with a trivial relation are dropped. Relationships that share
// (source, lower-cased relation, target) become one edge whose Weight is
// the number of occurrences and whose Relation keeps the first spelling.
func (m *Merger) Merge(
	entities []CanonicalEntity,
	mentions MentionMap,
	relationships []common.RawRelationship,
) *KnowledgeGraph {
	g := NewKnowledgeGraph()
	g.Stats.RawRelationships = len(relationships)

	known := make(map[EntityID]CanonicalEntity, len(entities))
	for _, e := range entities {
		known[e.ID] = e
	}

	edgeIndex := make(map[edgeKey]int)
	referenced := make(map[EntityID]struct{})

	for _, rel := range relationships {
		if strings.TrimSpace(rel.SourceText) == "" || strings.TrimSpace(rel.TargetText) == "" {
			g.Stats.Malformed++
			logger.Debug("[Merge] Skipping malformed relationship", "chunk", rel.ChunkIndex, "source", rel.SourceText, "target", rel.TargetText)
			continue
		}

		srcID, okS := m.resolve(mentions, known, rel.SourceText)
		tgtID, okT := m.resolve(mentions, known, rel.TargetText)
		if !okS || !okT {
			g.Stats.Unresolved++
			logger.Debug("[Merge] Unresolved relationship", "chunk", rel.ChunkIndex, "source", rel.SourceText, "target", rel.TargetText)
			continue
		}

		relation := strings.Join(strings.Fields(rel.Relation), " ")
		relKey := strings.ToLower(relation)
		if srcID == tgtID {
			if _, trivial := trivialRelations[relKey]; trivial {
				g.Stats.SelfLoops++
				continue
			}
		}

		key := edgeKey{source: srcID, relation: relKey, target: tgtID}
		if idx, ok := edgeIndex[key]; ok {
			g.Edges[idx].Weight++
			continue
		}
		edgeIndex[key] = len(g.Edges)
		g.Edges = append(g.Edges, Edge{
			SourceID: srcID,
			TargetID: tgtID,
			Relation: relation,
			Weight:   1,
		})
		referenced[srcID] = struct{}{}
		referenced[tgtID] = struct{}{}
	}

	for id, e := range known {
		if _, ok := referenced[id]; ok || m.includeIsolated {
			g.Entities[id] = e
		}
	}

	g.Stats.Edges = len(g.Edges)
	g.Stats.Entities = len(g.Entities)
	for _, e := range g.Edges {
		g.Stats.MaxWeight = max(g.Stats.MaxWeight, e.Weight)
	}

	logger.Debug("[Merge] Graph merged",
		"raw", g.Stats.RawRelationships,
		"edges", g.Stats.Edges,
		"unresolved", g.Stats.Unresolved,
		"malformed", g.Stats.Malformed,
		"self_loops", g.Stats.SelfLoops,
		"entities", g.Stats.Entities,
	)

	return g
}

func (m *Merger) resolve(mentions MentionMap, known map[EntityID]CanonicalEntity, text string) (EntityID, bool) {
	id, ok := mentions.Lookup(text)
	if !ok {
		return 0, false
	}
	if _, exists := known[id]; !exists {
		return 0, false
	}
	return id, true
}
