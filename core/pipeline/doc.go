// Package pipeline implements the LLM request pipeline: it renders a
// configured payload template with per-request placeholders, POSTs it to the
// configured endpoint, retries transient failures with exponential backoff,
// extracts the answer text along a dot-path into the response JSON, strips
// reasoning markers and surrounding prose, parses the answer as JSON and
// optionally validates it against a [schema.Schema].
//
// The primary entry point is [Pipeline.ProcessRequest]. Configuration comes
// either from a [settings.Store] via [FromStore] or from a hand-built
// [Config]. Failures surface as wrapped sentinel errors ([ErrConfigTemplate],
// [ErrTransport], [ErrExtraction], [ErrSchemaMismatch]) so callers can use
// errors.Is to classify them.
package pipeline
