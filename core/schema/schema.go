package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
)

// Schema represents the structure of the JSON Schema subset used for briefing
// and validating LLM responses. It supports object, array, string, number,
// boolean and null types, with properties, required, items, enum and an
// optional format annotation.
type Schema struct {
	// Type specifies the data type (e.g., "object", "array", "string", "number")
	Type string `json:"type,omitempty"`
	// Format carries an additional annotation such as "integer" for whole numbers
	Format   string   `json:"format,omitempty"`
	Required []string `json:"required,omitempty"`
	// Properties of the object, each with its own schema
	Properties map[string]*Schema `json:"properties,omitempty"`
	// For array types, defines the schema of items in the array
	Items *Schema `json:"items,omitempty"`
	// Enum contains the list of allowed values for the value
	Enum []any `json:"enum,omitempty"`
}

// RequiredPrefix marks a property name in a sample object as required. The
// prefix is stripped from the inferred property name.
const RequiredPrefix = "*"

// CanonicalType maps a type tag to its JSON-Schema keyword. The fragment leaf
// tag "text" becomes "string" and "integer" is folded into "number"; the five
// native keywords pass through unchanged. Any other tag is passed through
// as-is (unknown-type passthrough), which keeps inference robust against
// hand-written templates rather than enforcing a formal contract.
func CanonicalType(tag string) string {
	switch tag {
	case "text":
		return "string"
	case "integer":
		return "number"
	case "string", "number", "array", "object", "boolean":
		return tag
	default:
		return tag
	}
}

// Infer derives a schema from a sample JSON value, typically the result of
// unmarshalling a user-supplied content template.
//
// Arrays take their item schema from the first element only; an empty array
// yields {type:"array"} with untyped items, which Validate treats as
// accept-all. A map that already looks like a schema (it has a "type" key and
// no "content" key, the latter distinguishing a fragment text leaf) is
// normalized in place rather than wrapped. Any other map is treated as an
// object template whose property names may carry the [RequiredPrefix].
// Scalars map to string, number or boolean, with whole numbers annotated
// format:"integer"; anything else falls back to the runtime type name.
//
// Infer is deterministic: required names and property traversal use sorted
// key order, so the same input always yields a structurally identical schema.
func Infer(value any) *Schema {
	switch v := value.(type) {
	case []any:
		if len(v) == 0 {
			return &Schema{Type: "array"}
		}
		return &Schema{Type: "array", Items: Infer(v[0])}

	case map[string]any:
		if looksLikeSchema(v) {
			return normalize(v)
		}
		return inferObject(v)

	case string:
		return &Schema{Type: "string"}

	case bool:
		return &Schema{Type: "boolean"}

	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return &Schema{Type: "number", Format: "integer"}
		}
		return &Schema{Type: "number"}

	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return &Schema{Type: "number", Format: "integer"}

	case float32:
		return Infer(float64(v))

	case nil:
		return &Schema{Type: "null"}

	default:
		// Runtime-type fallback mirrors the permissive canonical mapping.
		return &Schema{Type: reflect.TypeOf(value).Kind().String()}
	}
}

// looksLikeSchema reports whether m is a pre-built schema object rather than a
// plain template. The "content" exclusion disambiguates a fragment text leaf,
// which also carries a "type" field.
func looksLikeSchema(m map[string]any) bool {
	_, hasType := m["type"]
	_, hasContent := m["content"]
	return hasType && !hasContent
}

// normalize re-derives a pre-built schema object through the canonical type
// mapping, recursing into nested properties and items.
func normalize(m map[string]any) *Schema {
	s := &Schema{}

	if tag, ok := m["type"].(string); ok {
		s.Type = CanonicalType(tag)
	}

	if props, ok := m["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*Schema, len(props))
		for _, name := range sortedKeys(props) {
			s.Properties[name] = Infer(props[name])
		}
	}

	if items, ok := m["items"]; ok {
		s.Items = Infer(items)
	}

	if required, ok := m["required"].([]any); ok {
		for _, name := range required {
			if str, ok := name.(string); ok {
				s.Required = append(s.Required, str)
			}
		}
	}

	if enum, ok := m["enum"].([]any); ok {
		s.Enum = enum
	}

	return s
}

// inferObject treats m as a plain object template: every property's schema is
// inferred from its sample value, and names carrying the required prefix are
// stripped and recorded.
func inferObject(m map[string]any) *Schema {
	s := &Schema{Type: "object", Properties: make(map[string]*Schema, len(m))}
	for _, key := range sortedKeys(m) {
		name := key
		if strings.HasPrefix(key, RequiredPrefix) {
			name = strings.TrimPrefix(key, RequiredPrefix)
			s.Required = append(s.Required, name)
		}
		s.Properties[name] = Infer(m[key])
	}
	return s
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate recursively checks data against s. It is a best-effort linter, not
// a strict validator: properties present in the schema but absent from the
// data impose no obligation unless listed in required, arrays without an item
// schema accept anything, and an unknown or missing type keyword vacuously
// succeeds. Mismatches return false rather than an error.
func Validate(data any, s *Schema) bool {
	if s == nil {
		return true
	}

	switch s.Type {
	case "object":
		obj, ok := data.(map[string]any)
		if !ok {
			return false
		}
		for _, name := range s.Required {
			if _, present := obj[name]; !present {
				return false
			}
		}
		for name, propSchema := range s.Properties {
			if value, present := obj[name]; present {
				if !Validate(value, propSchema) {
					return false
				}
			}
		}
		return true

	case "array":
		arr, ok := data.([]any)
		if !ok {
			return false
		}
		if s.Items == nil {
			return true
		}
		for _, item := range arr {
			if !Validate(item, s.Items) {
				return false
			}
		}
		return true

	case "string":
		str, ok := data.(string)
		if !ok {
			return false
		}
		return enumAllows(s.Enum, str)

	case "number":
		num, ok := data.(float64)
		if !ok {
			switch n := data.(type) {
			case int:
				num = float64(n)
			case int64:
				num = float64(n)
			case float32:
				num = float64(n)
			default:
				return false
			}
		}
		return enumAllows(s.Enum, num)

	case "boolean":
		_, ok := data.(bool)
		return ok

	case "null":
		return data == nil

	default:
		// Unknown-type passthrough: permissive by design.
		return true
	}
}

func enumAllows(enum []any, value any) bool {
	if len(enum) == 0 {
		return true
	}
	for _, allowed := range enum {
		if reflect.DeepEqual(allowed, value) {
			return true
		}
	}
	return false
}

// JsonString converts the Schema to its JSON representation
// indent: optional bool parameter. If true, formats JSON with indentation. If false or omitted, returns compact JSON.
func (s *Schema) JsonString(indent ...bool) (string, error) {
	shouldIndent := false // default: compact
	if len(indent) > 0 {
		shouldIndent = indent[0]
	}

	var jsonBytes []byte
	var err error

	if shouldIndent {
		jsonBytes, err = json.MarshalIndent(s, "", "  ")
	} else {
		jsonBytes, err = json.Marshal(s)
	}

	if err != nil {
		return "", fmt.Errorf("failed to marshal schema to JSON: %w", err)
	}
	return string(jsonBytes), nil
}

// String returns the compact JSON representation of the schema.
// Returns an error message if marshalling fails
func (s *Schema) String() string {
	jsonStr, err := s.JsonString()
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return jsonStr
}
