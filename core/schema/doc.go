// Package schema implements the minimal JSON-Schema subset used to brief the
// LLM on the exact shape of content it must produce, and to lint its answers.
// It is deliberately not a full JSON Schema implementation: only the types,
// properties, required, items, enum and format keywords are supported, and
// validation is permissive by design (unknown type keywords pass).
//
// Schemas are inferred from sample JSON values with [Infer]. A property name
// prefixed with "*" in the sample marks the stripped name as required; this is
// the sole required-ness signal. Answers are checked with [Validate].
package schema
