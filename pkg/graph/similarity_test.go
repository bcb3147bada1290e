package graph

import (
	"testing"
)

func TestMentionKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "whitespace only", in: " \t\n ", want: ""},
		{name: "case and spacing", in: "  Barack   OBAMA ", want: "barack obama"},
		{name: "keeps punctuation", in: "AT&T", want: "at&t"},
		{name: "composes accents", in: "José", want: "josé"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MentionKey(tt.in); got != tt.want {
				t.Fatalf("MentionKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name    string
		a, b    string
		atLeast float64
		below   float64
	}{
		{name: "identical", a: "Paris", b: "Paris", atLeast: 100, below: 101},
		{name: "case only", a: "Barack Obama", b: "barack obama", atLeast: 100, below: 101},
		{name: "token subset", a: "Barack Obama", b: "Obama", atLeast: 100, below: 101},
		{name: "accents and punctuation", a: "Société Générale", b: "societe-generale", atLeast: 100, below: 101},
		{name: "token order", a: "Obama Barack", b: "Barack Obama", atLeast: 100, below: 101},
		{name: "different names", a: "Apple", b: "Microsoft", atLeast: 0, below: 50},
		{name: "shared surname only", a: "John Smith", b: "Mary Smith", atLeast: 0, below: 85},
		{name: "empty side", a: "", b: "Obama", atLeast: 0, below: 0.5},
		{name: "punctuation only", a: "!!!", b: "Obama", atLeast: 0, below: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if got < tt.atLeast || got >= tt.below {
				t.Fatalf("Similarity(%q, %q) = %.2f, want in [%.2f, %.2f)", tt.a, tt.b, got, tt.atLeast, tt.below)
			}
			if rev := Similarity(tt.b, tt.a); rev != got {
				t.Fatalf("Similarity is not symmetric: %.2f vs %.2f", got, rev)
			}
		})
	}
}

func TestUnionFind(t *testing.T) {
	uf := newUnionFind(5)
	if !uf.union(3, 1) {
		t.Fatal("expected first union to merge")
	}
	if uf.union(1, 3) {
		t.Fatal("expected repeated union to be a no-op")
	}
	uf.union(4, 3)

	if got := uf.find(4); got != 1 {
		t.Fatalf("find(4) = %d, want lowest index 1 as root", got)
	}

	got := uf.components()
	want := [][]int{{0}, {1, 3, 4}, {2}}
	if len(got) != len(want) {
		t.Fatalf("components() = %v, want %v", got, want)
	}
	for i := range want {
		if len(got[i]) != len(want[i]) {
			t.Fatalf("components() = %v, want %v", got, want)
		}
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Fatalf("components() = %v, want %v", got, want)
			}
		}
	}
}
