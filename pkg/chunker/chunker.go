package chunker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sisyphuswastaken/web-scraper/pkg/common"
	"github.com/sisyphuswastaken/web-scraper/pkg/logger"

	"github.com/pkoukk/tiktoken-go"
)

const (
	DefaultSize    = 500
	DefaultOverlap = 50
)

var (
	ErrInvalidSize    = errors.New("chunk size must be positive")
	ErrInvalidOverlap = errors.New("chunk overlap must be non-negative and smaller than the chunk size")
)

// ChunkerParams configures a Chunker.
//
// Size and Overlap are measured in words, or in tokens of the tiktoken
// encoding named by Encoder (e.g. "o200k_base") when it is set.
type ChunkerParams struct {
	Size    int
	Overlap int
	Encoder string
}

// Chunker splits cleaned article text into overlapping, sentence aligned
// chunks. It is safe for concurrent use.
type Chunker struct {
	size    int
	overlap int
	enc     *tiktoken.Tiktoken
}

// NewChunker validates params and returns a Chunker.
//
// Example:
//
//	c, err := chunker.NewChunker(chunker.ChunkerParams{Size: 500, Overlap: 50})
//	if err != nil {
//		log.Fatal(err)
//	}
//	chunks, err := c.Chunk(text)
func NewChunker(params ChunkerParams) (*Chunker, error) {
	if params.Size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, params.Size)
	}
	if params.Overlap < 0 || params.Overlap >= params.Size {
		return nil, fmt.Errorf("%w: overlap %d, size %d", ErrInvalidOverlap, params.Overlap, params.Size)
	}

	c := &Chunker{size: params.Size, overlap: params.Overlap}
	if params.Encoder != "" {
		enc, err := tiktoken.GetEncoding(params.Encoder)
		if err != nil {
			return nil, fmt.Errorf("failed to load encoding %q: %w", params.Encoder, err)
		}
		c.enc = enc
	}
	return c, nil
}

// Size returns the maximum number of units per chunk.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the number of units carried between chunks.
func (c *Chunker) Overlap() int { return c.overlap }

func (c *Chunker) count(s string) int {
	if c.enc != nil {
		return len(c.enc.Encode(s, nil, nil))
	}
	return len(strings.Fields(s))
}

// Chunk splits text into chunks of at most Size units. Sentences are never
// split: a sentence longer than Size becomes a chunk of its own. Each chunk
// after the first starts with the trailing sentences of the previous chunk
// that fit into Overlap units, as long as the new chunk still gains at
// least one sentence.
func (c *Chunker) Chunk(text string) ([]common.Chunk, error) {
	sentences := splitSentences(strings.TrimSpace(text))
	chunks := make([]common.Chunk, 0)
	if len(sentences) == 0 {
		return chunks, nil
	}

	units := make([]int, len(sentences))
	for i, s := range sentences {
		units[i] = c.count(s)
	}

	start := 0
	for start < len(sentences) {
		end := start
		total := 0
		for end < len(sentences) && (end == start || total+units[end] <= c.size) {
			total += units[end]
			end++
		}

		chunks = append(chunks, common.Chunk{
			Index:  len(chunks),
			Text:   strings.Join(sentences[start:end], " "),
			Start:  start,
			End:    end,
			Tokens: total,
		})

		if end == len(sentences) {
			break
		}

		next := end
		carried := 0
		for next-1 > start &&
			carried+units[next-1] <= c.overlap &&
			carried+units[next-1]+units[end] <= c.size {
			carried += units[next-1]
			next--
		}
		start = next
	}

	logger.Debug("[Chunker] Split text", "sentences", len(sentences), "chunks", len(chunks), "size", c.size, "overlap", c.overlap)

	return chunks, nil
}
