package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/kaptinlin/jsonrepair"
)

var ErrEmptyResponse = errors.New("model returned an empty response")

// GenerateSchema reflects the JSON Schema of value's type for structured
// output requests. Pointers are dereferenced.
func GenerateSchema(value any) any {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	t := reflect.TypeOf(value)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return r.Reflect(reflect.New(t).Interface())
}

// DecodeModelJSON decodes a model reply into out. Replies are often not
// clean JSON: they may be wrapped in a markdown fence, surrounded by prose,
// encoded as a JSON string, or cut off mid-object. Each shape is peeled off
// in turn and jsonrepair gets the last word.
//
// Example:
//
//	var res ExtractionResult
//	err := DecodeModelJSON("```json\n{\"entities\": []}\n```", &res)
func DecodeModelJSON(reply string, out any) error {
	body := strings.TrimSpace(reply)
	if body == "" {
		return ErrEmptyResponse
	}
	if json.Unmarshal([]byte(body), out) == nil {
		return nil
	}

	body = unfence(body)

	var inner string
	if json.Unmarshal([]byte(body), &inner) == nil {
		body = unfence(strings.TrimSpace(inner))
	}
	body = trimToPayload(body)
	if json.Unmarshal([]byte(body), out) == nil {
		return nil
	}

	fixed, err := jsonrepair.JSONRepair(collapseLeadingBrace(body))
	if err != nil {
		return fmt.Errorf("failed to repair model json: %w", err)
	}
	if err := json.Unmarshal([]byte(fixed), out); err != nil {
		return fmt.Errorf("failed to decode repaired model json %q: %w", fixed, err)
	}
	return nil
}

// unfence removes a surrounding ``` or ```json block.
func unfence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
		s = s[nl+1:]
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

// trimToPayload drops prose before the first '{' or '[' and after the
// matching last closer. Text without any opener is returned unchanged.
func trimToPayload(s string) string {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	closer := byte('}')
	if s[start] == '[' {
		closer = ']'
	}
	s = s[start:]
	if end := strings.LastIndexByte(s, closer); end > 0 {
		return s[:end+1]
	}
	return s
}

// collapseLeadingBrace turns "{ {" into "{", a stutter some local models
// produce at the start of structured output.
func collapseLeadingBrace(s string) string {
	if rest, ok := strings.CutPrefix(s, "{"); ok {
		rest = strings.TrimSpace(rest)
		if strings.HasPrefix(rest, "{") {
			return rest
		}
	}
	return s
}
