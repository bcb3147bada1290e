package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/sisyphuswastaken/web-scraper/pkg/ai"
	"github.com/sisyphuswastaken/web-scraper/pkg/common"
)

// Extractor finds entity mentions and relationships in a single chunk.
// Implementations must be safe for concurrent use.
type Extractor interface {
	Extract(ctx context.Context, chunk common.Chunk) ([]common.RawMention, []common.RawRelationship, error)
}

type extractEntity struct {
	Name string `json:"name" jsonschema_description:"Name of the entity exactly as written in the text"`
	Type string `json:"type" jsonschema_description:"One of the provided entity types"`
}

type extractRelationship struct {
	Source   string `json:"source" jsonschema_description:"Name of the source entity, as identified in the entities list"`
	Relation string `json:"relation" jsonschema_description:"Short verb phrase describing how the source relates to the target"`
	Target   string `json:"target" jsonschema_description:"Name of the target entity, as identified in the entities list"`
}

type extractResponse struct {
	Entities      []extractEntity       `json:"entities" jsonschema_description:"Entities identified in the text"`
	Relationships []extractRelationship `json:"relationships" jsonschema_description:"Relationships identified in the text"`
}

// LLMExtractor extracts mentions and relationships with a structured
// completion from an ai.GraphAIClient.
type LLMExtractor struct {
	client      ai.GraphAIClient
	entityTypes []common.EntityType
	opts        []ai.GenerateOption
}

// NewLLMExtractorParams configures an LLMExtractor. EntityTypes defaults to
// common.DefaultEntityTypes and Model to the client's default. Thinking is
// passed through as the reasoning effort for models that support it.
type NewLLMExtractorParams struct {
	Client      ai.GraphAIClient
	EntityTypes []common.EntityType
	Model       string
	Thinking    string
}

// NewLLMExtractor creates an LLMExtractor.
//
// Example:
//
//	extractor := extract.NewLLMExtractor(extract.NewLLMExtractorParams{
//		Client: aiClient,
//		Model:  "gpt-4.1-mini",
//	})
func NewLLMExtractor(params NewLLMExtractorParams) *LLMExtractor {
	types := params.EntityTypes
	if len(types) == 0 {
		types = common.DefaultEntityTypes
	}

	var opts []ai.GenerateOption
	if params.Model != "" {
		opts = append(opts, ai.WithModel(params.Model))
	}
	if params.Thinking != "" {
		opts = append(opts, ai.WithThinking(params.Thinking))
	}
	opts = append(opts, ai.WithTemperature(0))

	return &LLMExtractor{
		client:      params.Client,
		entityTypes: types,
		opts:        opts,
	}
}

// Extract implements Extractor. Every returned mention and relationship is
// tagged with chunk.Index.
func (e *LLMExtractor) Extract(
	ctx context.Context,
	chunk common.Chunk,
) ([]common.RawMention, []common.RawRelationship, error) {
	if strings.TrimSpace(chunk.Text) == "" {
		return []common.RawMention{}, []common.RawRelationship{}, nil
	}

	names := make([]string, 0, len(e.entityTypes))
	for _, t := range e.entityTypes {
		names = append(names, string(t))
	}
	typeList := strings.Join(names, ",")
	systemPrompt := fmt.Sprintf(ai.ExtractPrompt, typeList, typeList)

	opts := append([]ai.GenerateOption{ai.WithSystemPrompts(systemPrompt)}, e.opts...)

	var res extractResponse
	err := e.client.GenerateCompletionWithFormat(
		ctx,
		"extract_entities_and_relationships",
		"Extract named entities and the relationships between them from a text passage.",
		chunk.Text,
		&res,
		opts...,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("chunk %d: %w", chunk.Index, err)
	}

	mentions, relations := toRaw(res, chunk.Index)
	return mentions, relations, nil
}

func toRaw(res extractResponse, chunkIndex int) ([]common.RawMention, []common.RawRelationship) {
	mentions := make([]common.RawMention, 0, len(res.Entities))
	for _, entity := range res.Entities {
		mentions = append(mentions, common.RawMention{
			Text:       entity.Name,
			Type:       common.EntityType(entity.Type),
			ChunkIndex: chunkIndex,
		})
	}

	relations := make([]common.RawRelationship, 0, len(res.Relationships))
	for _, rel := range res.Relationships {
		relations = append(relations, common.RawRelationship{
			SourceText: rel.Source,
			Relation:   rel.Relation,
			TargetText: rel.Target,
			ChunkIndex: chunkIndex,
		})
	}

	return mentions, relations
}
