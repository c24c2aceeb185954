// Package extract recovers structured JSON from raw LLM text output. Because
// language models frequently wrap JSON in visible chain-of-thought, narrative
// prose, markdown code fences, or trailing commentary, this package applies a
// layered recovery strategy: reasoning-marker stripping, outermost-brace span
// slicing, and automatic JSON repair, before falling back to a clear error.
//
// The usual sequence is [StripReasoning], then [JSONSpan], then [ParseObject].
package extract
