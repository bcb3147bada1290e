package extract

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/sisyphuswastaken/web-scraper/pkg/ai"
	"github.com/sisyphuswastaken/web-scraper/pkg/common"
)

type fakeAIClient struct {
	response string
	err      error

	prompt  string
	options ai.GenerateOptions
	calls   int
}

func (f *fakeAIClient) GenerateCompletionWithFormat(
	ctx context.Context,
	name string,
	description string,
	prompt string,
	out any,
	opts ...ai.GenerateOption,
) error {
	f.calls++
	f.prompt = prompt
	f.options = ai.ApplyOptions(ai.GenerateOptions{}, opts...)
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.response), out)
}

func (f *fakeAIClient) LoadModel(ctx context.Context, opts ...ai.GenerateOption) error { return nil }
func (f *fakeAIClient) GetMetrics() ai.ModelMetrics                                    { return ai.ModelMetrics{} }

func TestLLMExtractor_Extract(t *testing.T) {
	client := &fakeAIClient{response: `{
		"entities": [
			{"name": "Barack Obama", "type": "PERSON"},
			{"name": "Kenya", "type": "LOCATION"}
		],
		"relationships": [
			{"source": "Barack Obama", "relation": "visited", "target": "Kenya"}
		]
	}`}

	e := NewLLMExtractor(NewLLMExtractorParams{Client: client, Model: "test-model"})
	mentions, relations, err := e.Extract(context.Background(), common.Chunk{Index: 4, Text: "Barack Obama visited Kenya."})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	wantMentions := []common.RawMention{
		{Text: "Barack Obama", Type: "PERSON", ChunkIndex: 4},
		{Text: "Kenya", Type: "LOCATION", ChunkIndex: 4},
	}
	if len(mentions) != len(wantMentions) {
		t.Fatalf("mentions = %+v", mentions)
	}
	for i := range wantMentions {
		if mentions[i] != wantMentions[i] {
			t.Fatalf("mentions[%d] = %+v, want %+v", i, mentions[i], wantMentions[i])
		}
	}
	wantRel := common.RawRelationship{SourceText: "Barack Obama", Relation: "visited", TargetText: "Kenya", ChunkIndex: 4}
	if len(relations) != 1 || relations[0] != wantRel {
		t.Fatalf("relations = %+v", relations)
	}

	if client.prompt != "Barack Obama visited Kenya." {
		t.Fatalf("prompt = %q", client.prompt)
	}
	if client.options.Model != "test-model" {
		t.Fatalf("model = %q", client.options.Model)
	}
	if len(client.options.SystemPrompts) != 1 || !strings.Contains(client.options.SystemPrompts[0], "PERSON,ORGANIZATION,LOCATION") {
		t.Fatalf("system prompt does not list the default entity types: %v", client.options.SystemPrompts)
	}
}

func TestLLMExtractor_CustomTypes(t *testing.T) {
	client := &fakeAIClient{response: `{"entities": [], "relationships": []}`}
	e := NewLLMExtractor(NewLLMExtractorParams{Client: client, EntityTypes: []common.EntityType{"TEAM", "PLAYER"}})

	if _, _, err := e.Extract(context.Background(), common.Chunk{Text: "text"}); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(client.options.SystemPrompts[0], "[TEAM,PLAYER]") {
		t.Fatalf("system prompt does not list custom types: %s", client.options.SystemPrompts[0])
	}
}

func TestLLMExtractor_BlankChunk(t *testing.T) {
	client := &fakeAIClient{}
	e := NewLLMExtractor(NewLLMExtractorParams{Client: client})

	mentions, relations, err := e.Extract(context.Background(), common.Chunk{Text: "  \n "})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(mentions) != 0 || len(relations) != 0 || client.calls != 0 {
		t.Fatal("blank chunks must not reach the model")
	}
}

func TestLLMExtractor_ClientError(t *testing.T) {
	boom := errors.New("upstream 500")
	e := NewLLMExtractor(NewLLMExtractorParams{Client: &fakeAIClient{err: boom}})

	_, _, err := e.Extract(context.Background(), common.Chunk{Index: 2, Text: "text"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped client error, got %v", err)
	}
}
