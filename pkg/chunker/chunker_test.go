package chunker

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/sisyphuswastaken/web-scraper/pkg/common"
)

func TestNewChunker_Validation(t *testing.T) {
	tests := []struct {
		name    string
		params  ChunkerParams
		wantErr error
	}{
		{name: "defaults", params: ChunkerParams{Size: DefaultSize, Overlap: DefaultOverlap}},
		{name: "no overlap", params: ChunkerParams{Size: 10}},
		{name: "zero size", params: ChunkerParams{Size: 0}, wantErr: ErrInvalidSize},
		{name: "negative overlap", params: ChunkerParams{Size: 10, Overlap: -1}, wantErr: ErrInvalidOverlap},
		{name: "overlap equals size", params: ChunkerParams{Size: 10, Overlap: 10}, wantErr: ErrInvalidOverlap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChunker(tt.params)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestChunk(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		text    string
		want    []common.Chunk
	}{
		{
			name: "empty",
			size: 5,
			text: "  \n ",
			want: []common.Chunk{},
		},
		{
			name: "fits in one chunk",
			size: 10,
			text: "Obama visited Kenya. He met officials.",
			want: []common.Chunk{
				{Index: 0, Text: "Obama visited Kenya. He met officials.", Start: 0, End: 2, Tokens: 6},
			},
		},
		{
			name:    "overlap carries trailing sentences",
			size:    5,
			overlap: 2,
			text:    "One two three. Four five. Six seven eight. Nine.",
			want: []common.Chunk{
				{Index: 0, Text: "One two three. Four five.", Start: 0, End: 2, Tokens: 5},
				{Index: 1, Text: "Four five. Six seven eight.", Start: 1, End: 3, Tokens: 5},
				{Index: 2, Text: "Nine.", Start: 3, End: 4, Tokens: 1},
			},
		},
		{
			name: "oversized sentence is its own chunk",
			size: 2,
			text: "This sentence is far too long. Short.",
			want: []common.Chunk{
				{Index: 0, Text: "This sentence is far too long.", Start: 0, End: 1, Tokens: 6},
				{Index: 1, Text: "Short.", Start: 1, End: 2, Tokens: 1},
			},
		},
		{
			name:    "overlap dropped when it would overflow",
			size:    4,
			overlap: 3,
			text:    "A b. C d. E f g h.",
			want: []common.Chunk{
				{Index: 0, Text: "A b. C d.", Start: 0, End: 2, Tokens: 4},
				{Index: 1, Text: "E f g h.", Start: 2, End: 3, Tokens: 4},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewChunker(ChunkerParams{Size: tt.size, Overlap: tt.overlap})
			if err != nil {
				t.Fatalf("NewChunker: %v", err)
			}
			got, err := c.Chunk(tt.text)
			if err != nil {
				t.Fatalf("Chunk: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Chunk() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestChunk_CoversEverySentence(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString("The delegation met local officials in the capital today. ")
	}

	c, err := NewChunker(ChunkerParams{Size: 50, Overlap: 10})
	if err != nil {
		t.Fatalf("NewChunker: %v", err)
	}
	chunks, err := c.Chunk(b.String())
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}

	if chunks[0].Start != 0 || chunks[len(chunks)-1].End != 200 {
		t.Fatalf("chunks do not span all sentences: first %+v last %+v", chunks[0], chunks[len(chunks)-1])
	}
	for i, ch := range chunks {
		if ch.Index != i {
			t.Fatalf("chunk %d has index %d", i, ch.Index)
		}
		if ch.Tokens > 50 {
			t.Fatalf("chunk %d has %d units", i, ch.Tokens)
		}
		if i > 0 {
			prev := chunks[i-1]
			if ch.Start > prev.End || ch.Start <= prev.Start || ch.End <= prev.End {
				t.Fatalf("chunk %d [%d,%d) does not follow [%d,%d)", i, ch.Start, ch.End, prev.Start, prev.End)
			}
			if overlap := prev.End - ch.Start; overlap != 1 {
				t.Fatalf("chunk %d overlaps %d sentences, want 1", i, overlap)
			}
		}
	}
}
