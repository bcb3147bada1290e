package graph

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/sisyphuswastaken/web-scraper/pkg/common"
)

func TestToJSON(t *testing.T) {
	g := buildGraph(t, DefaultMergerParams(), obamaMentions(), []common.RawRelationship{
		rel("Obama", "visited", "Kenya", 0),
		rel("Obama", "visited", "Kenya", 1),
	})

	doc := ToJSON(g)

	wantNodes := []Node{
		{ID: 1, Label: "Barack Obama", Type: "PERSON", Aliases: []string{"Barack Obama", "Obama"}, Weight: 2},
		{ID: 2, Label: "Kenya", Type: "LOCATION", Aliases: []string{"Kenya"}, Weight: 1},
	}
	if !reflect.DeepEqual(doc.Nodes, wantNodes) {
		t.Fatalf("nodes = %+v, want %+v", doc.Nodes, wantNodes)
	}
	wantEdges := []Link{{Source: 1, Target: 2, Relation: "visited", Weight: 2}}
	if !reflect.DeepEqual(doc.Edges, wantEdges) {
		t.Fatalf("edges = %+v, want %+v", doc.Edges, wantEdges)
	}

	// the document must not alias graph state
	doc.Nodes[0].Aliases[0] = "changed"
	if g.Entities[1].Aliases[0] != "Barack Obama" {
		t.Fatal("ToJSON shares alias slices with the graph")
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var shape map[string][]map[string]any
	if err := json.Unmarshal(raw, &shape); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"id", "label", "type", "aliases", "weight"} {
		if _, ok := shape["nodes"][0][key]; !ok {
			t.Errorf("node is missing %q", key)
		}
	}
	for _, key := range []string{"source", "target", "relation", "weight"} {
		if _, ok := shape["edges"][0][key]; !ok {
			t.Errorf("edge is missing %q", key)
		}
	}
}

func TestToJSON_EmptyGraph(t *testing.T) {
	raw, err := json.Marshal(ToJSON(NewKnowledgeGraph()))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got := string(raw); got != `{"nodes":[],"edges":[]}` {
		t.Fatalf("got %s", got)
	}
}

func TestExport(t *testing.T) {
	g := buildGraph(t, DefaultMergerParams(), obamaMentions(), []common.RawRelationship{
		rel("Obama", "visited", "Kenya", 0),
		rel("Obama", "born in", "Hawaii", 0),
	})

	doc := Export(g)

	if len(doc.Entities) != 2 || doc.Entities[0].ID != 1 || doc.Entities[1].ID != 2 {
		t.Fatalf("entities not ordered by id: %+v", doc.Entities)
	}
	if len(doc.Edges) != 1 {
		t.Fatalf("edges = %+v", doc.Edges)
	}
	want := MergeStats{RawRelationships: 2, Edges: 1, Unresolved: 1, Entities: 2, MaxWeight: 1}
	if doc.Stats != want {
		t.Fatalf("stats = %+v, want %+v", doc.Stats, want)
	}

	doc.Edges[0].Weight = 99
	if g.Edges[0].Weight != 1 {
		t.Fatal("Export shares the edge slice with the graph")
	}
}
