package graph

import (
	"sort"

	"github.com/sisyphuswastaken/web-scraper/pkg/common"
)

// EntityID identifies a canonical entity inside one KnowledgeGraph. IDs are
// assigned 1..n in cluster order, so they are stable for a fixed input.
type EntityID int

// CanonicalEntity is the merged representation of every mention judged to
// refer to the same real-world thing. Aliases holds each distinct raw
// spelling that was folded in, sorted.
type CanonicalEntity struct {
	ID            EntityID          `json:"id"`
	CanonicalName string            `json:"canonical_name"`
	Type          common.EntityType `json:"type"`
	Aliases       []string          `json:"aliases"`
	MentionCount  int               `json:"mention_count"`
}

// Edge is a deduplicated relationship between two canonical entities.
// Weight counts the raw relationships that collapsed into it.
type Edge struct {
	SourceID EntityID `json:"source_id"`
	TargetID EntityID `json:"target_id"`
	Relation string   `json:"relation"`
	Weight   int      `json:"weight"`
}

// MergeStats summarises what the merger did with its input.
type MergeStats struct {
	RawRelationships int `json:"raw_relationship_count"`
	Edges            int `json:"relationship_count"`
	Unresolved       int `json:"unresolved_count"`
	Malformed        int `json:"malformed_count"`
	SelfLoops        int `json:"self_loop_count"`
	Entities         int `json:"entity_count"`
	MaxWeight        int `json:"max_weight"`
}

// KnowledgeGraph is the merged result for a single article.
//
// Every edge endpoint refers to a key of Entities, and no two edges share
// the same (SourceID, lower-cased Relation, TargetID) triple.
type KnowledgeGraph struct {
	Entities map[EntityID]CanonicalEntity
	Edges    []Edge
	Stats    MergeStats
}

// NewKnowledgeGraph returns an empty graph.
func NewKnowledgeGraph() *KnowledgeGraph {
	return &KnowledgeGraph{
		Entities: make(map[EntityID]CanonicalEntity),
		Edges:    make([]Edge, 0),
	}
}

// EntityList returns the entities ordered by id.
func (g *KnowledgeGraph) EntityList() []CanonicalEntity {
	ids := make([]EntityID, 0, len(g.Entities))
	for id := range g.Entities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]CanonicalEntity, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.Entities[id])
	}
	return out
}

// MentionMap rebuilds a lookup from every canonical name and alias in the
// graph to its entity. Shared spellings resolve the same way Normalize does.
func (g *KnowledgeGraph) MentionMap() MentionMap {
	entities := g.EntityList()
	mentions := make(MentionMap, len(entities))
	for _, entity := range entities {
		mentions.assign(MentionKey(entity.CanonicalName), entity, g.Entities)
		for _, alias := range entity.Aliases {
			mentions.assign(MentionKey(alias), entity, g.Entities)
		}
	}
	return mentions
}

// RawRelationships replays every edge as Weight raw relationships. Each
// endpoint is spelled so that MentionMap resolves it back to the same
// entity, so merging the result against EntityList and MentionMap
// reproduces the same edge set.
func (g *KnowledgeGraph) RawRelationships() []common.RawRelationship {
	mentions := g.MentionMap()
	rels := make([]common.RawRelationship, 0, len(g.Edges))
	for _, edge := range g.Edges {
		src, okS := g.Entities[edge.SourceID]
		tgt, okT := g.Entities[edge.TargetID]
		if !okS || !okT {
			continue
		}
		srcName, tgtName := replayName(src, mentions), replayName(tgt, mentions)
		for range edge.Weight {
			rels = append(rels, common.RawRelationship{
				SourceText: srcName,
				Relation:   edge.Relation,
				TargetText: tgtName,
			})
		}
	}
	return rels
}

// replayName picks the canonical name, or else the first alias, that
// mentions resolves to entity. Spellings shared with a more frequent entity
// resolve elsewhere and are skipped.
func replayName(entity CanonicalEntity, mentions MentionMap) string {
	if id, ok := mentions.Lookup(entity.CanonicalName); ok && id == entity.ID {
		return entity.CanonicalName
	}
	for _, alias := range entity.Aliases {
		if id, ok := mentions.Lookup(alias); ok && id == entity.ID {
			return alias
		}
	}
	return entity.CanonicalName
}

// MentionMap maps case-normalized mention text to the entity it resolved to.
type MentionMap map[string]EntityID

// Lookup resolves raw mention text. The second result is false when the
// text was never seen by the normalizer.
func (m MentionMap) Lookup(text string) (EntityID, bool) {
	key := MentionKey(text)
	if key == "" {
		return 0, false
	}
	id, ok := m[key]
	return id, ok
}

// assign maps key to entity unless it is already held by an entity with a
// higher mention count (ties go to the lower id). It reports whether key was
// already mapped to a different entity.
func (m MentionMap) assign(key string, entity CanonicalEntity, all map[EntityID]CanonicalEntity) bool {
	if key == "" {
		return false
	}
	current, ok := m[key]
	if !ok {
		m[key] = entity.ID
		return false
	}
	if current == entity.ID {
		return false
	}
	held := all[current]
	if entity.MentionCount > held.MentionCount ||
		(entity.MentionCount == held.MentionCount && entity.ID < held.ID) {
		m[key] = entity.ID
	}
	return true
}
