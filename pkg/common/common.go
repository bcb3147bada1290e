package common

import "strings"

// EntityType is the label an extraction adapter attaches to a mention
// (PERSON, ORGANIZATION, LOCATION, DATE, MISC, ...). The graph core treats
// it as opaque and only compares labels for equality.
type EntityType string

// TypeUnknown marks a mention whose adapter did not supply a usable type.
const TypeUnknown EntityType = "UNKNOWN"

// DefaultEntityTypes is the vocabulary offered to extraction adapters when
// the caller does not configure one.
var DefaultEntityTypes = []EntityType{
	"PERSON",
	"ORGANIZATION",
	"LOCATION",
	"DATE",
	"EVENT",
	"PRODUCT",
	"CONCEPT",
	"MISC",
}

// Normalize returns the upper-cased, trimmed label. Blank labels and any
// spelling of "unknown" collapse to TypeUnknown.
func (t EntityType) Normalize() EntityType {
	v := strings.ToUpper(strings.TrimSpace(string(t)))
	if v == "" || v == string(TypeUnknown) {
		return TypeUnknown
	}
	return EntityType(v)
}

// IsUnknown reports whether the label carries no type information.
func (t EntityType) IsUnknown() bool {
	return t.Normalize() == TypeUnknown
}

// Compatible reports whether two mentions of these types may refer to the
// same real-world entity. Identical labels are compatible, and an unknown
// label is compatible with everything.
func (t EntityType) Compatible(other EntityType) bool {
	a, b := t.Normalize(), other.Normalize()
	return a == TypeUnknown || b == TypeUnknown || a == b
}

// Chunk is a bounded, possibly overlapping slice of cleaned article text.
// Start and End are sentence offsets into the cleaned text, End exclusive.
type Chunk struct {
	Index  int    `json:"index"`
	Text   string `json:"text"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Tokens int    `json:"tokens"`
}

// RawMention is a single textual occurrence of an entity name produced by
// an extraction adapter for one chunk.
type RawMention struct {
	Text       string     `json:"text"`
	Type       EntityType `json:"type"`
	ChunkIndex int        `json:"chunk_index"`
}

// RawRelationship is an unresolved (source, relation, target) triple whose
// endpoints are raw mention text.
type RawRelationship struct {
	SourceText string `json:"source_text"`
	Relation   string `json:"relation"`
	TargetText string `json:"target_text"`
	ChunkIndex int    `json:"chunk_index"`
}

// ChunkExtraction is everything an adapter contributed for one chunk. A
// chunk whose extraction failed carries Err and no mentions or
// relationships.
type ChunkExtraction struct {
	ChunkIndex    int               `json:"chunk_index"`
	Mentions      []RawMention      `json:"mentions"`
	Relationships []RawRelationship `json:"relationships"`
	Err           error             `json:"-"`
}

// Flatten concatenates per-chunk results in slice order.
func Flatten(extractions []ChunkExtraction) ([]RawMention, []RawRelationship) {
	var mentions []RawMention
	var relations []RawRelationship
	for _, e := range extractions {
		mentions = append(mentions, e.Mentions...)
		relations = append(relations, e.Relationships...)
	}
	return mentions, relations
}
