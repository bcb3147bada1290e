package graph

import "github.com/sisyphuswastaken/web-scraper/pkg/common"

// Node is the API form of a canonical entity.
type Node struct {
	ID      EntityID          `json:"id"`
	Label   string            `json:"label"`
	Type    common.EntityType `json:"type"`
	Aliases []string          `json:"aliases"`
	Weight  int               `json:"weight"`
}

// Link is the API form of an edge.
type Link struct {
	Source   EntityID `json:"source"`
	Target   EntityID `json:"target"`
	Relation string   `json:"relation"`
	Weight   int      `json:"weight"`
}

// Document is the node/edge view of a graph returned to clients.
type Document struct {
	Nodes []Node `json:"nodes"`
	Edges []Link `json:"edges"`
}

// ExportDocument is the entity/edge/stats view of a graph.
type ExportDocument struct {
	Entities []CanonicalEntity `json:"entities"`
	Edges    []Edge            `json:"edges"`
	Stats    MergeStats        `json:"stats"`
}

// ToJSON converts g into its node/edge document. Nodes are ordered by id and
// edges keep graph order. The graph is not modified.
func ToJSON(g *KnowledgeGraph) Document {
	doc := Document{
		Nodes: make([]Node, 0, len(g.Entities)),
		Edges: make([]Link, 0, len(g.Edges)),
	}
	for _, e := range g.EntityList() {
		doc.Nodes = append(doc.Nodes, Node{
			ID:      e.ID,
			Label:   e.CanonicalName,
			Type:    e.Type,
			Aliases: copyStrings(e.Aliases),
			Weight:  e.MentionCount,
		})
	}
	for _, e := range g.Edges {
		doc.Edges = append(doc.Edges, Link{
			Source:   e.SourceID,
			Target:   e.TargetID,
			Relation: e.Relation,
			Weight:   e.Weight,
		})
	}
	return doc
}

// Export converts g into its entity/edge/stats document.
func Export(g *KnowledgeGraph) ExportDocument {
	entities := g.EntityList()
	for i := range entities {
		entities[i].Aliases = copyStrings(entities[i].Aliases)
	}
	edges := make([]Edge, len(g.Edges))
	copy(edges, g.Edges)

	return ExportDocument{
		Entities: entities,
		Edges:    edges,
		Stats:    g.Stats,
	}
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
