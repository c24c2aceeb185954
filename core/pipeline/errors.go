package pipeline

import "errors"

// The pipeline's error taxonomy. Every error returned by
// [Pipeline.ProcessRequest] wraps exactly one of these sentinels; use
// errors.Is to classify.
//
// Example:
//
//	if errors.Is(err, pipeline.ErrTransport) {
//	    // network failure survived every attempt
//	}
var (
	// ErrConfigTemplate marks a payload template that does not render to a
	// valid JSON object. It is a configuration bug and is never retried.
	ErrConfigTemplate = errors.New("loregen: payload template does not render to valid JSON")

	// ErrTransport marks a network or HTTP failure. Individual occurrences
	// are retried; the error escapes only once the try limit is exhausted.
	ErrTransport = errors.New("loregen: request transport failed")

	// ErrExtraction marks a response whose answer text could not be located
	// or parsed (missing response path, no JSON span, unparseable span).
	// Retried like ErrTransport.
	ErrExtraction = errors.New("loregen: failed to extract answer from response")

	// ErrSchemaMismatch marks a parsed answer that fails schema validation.
	// Fatal by default; retried when [Config.RetrySchemaMismatch] is set.
	ErrSchemaMismatch = errors.New("loregen: response does not conform to the requested schema")
)
