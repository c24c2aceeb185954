package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/leofalp/loregen/core/extract"
	"github.com/leofalp/loregen/core/schema"
	"github.com/leofalp/loregen/internal/utils"
)

// Placeholders recognized inside [Config.PayloadTemplate]. GenerationContext
// and the Escaped schema variant are JSON-string-escaped before substitution,
// so they are safe inside an existing string literal; ContentTemplate and
// ContentSchema substitute the serialized schema verbatim for embedding as an
// object value.
const (
	PlaceholderModel                = "{{Model}}"
	PlaceholderGenerationContext    = "{{GenerationContext}}"
	PlaceholderContentTemplate      = "{{ContentTemplate}}"
	PlaceholderContentSchema        = "{{ContentSchema}}"
	PlaceholderContentSchemaEscaped = "{{ContentSchemaEscaped}}"
)

// Params are the per-request inputs to [Pipeline.ProcessRequest].
type Params struct {
	// Model overrides the payload's model field when non-empty.
	Model string

	// GenerationContext is the free-text context and instructions spliced
	// into the template at PlaceholderGenerationContext.
	GenerationContext string

	// ContentSchema describes the shape the answer must have. It feeds the
	// schema placeholders, and when ValidateResponse is set the parsed
	// answer is checked against it.
	ContentSchema *schema.Schema

	// ValidateResponse enables validation of the parsed answer against
	// ContentSchema. Ignored when ContentSchema is nil.
	ValidateResponse bool
}

// Result is the successful outcome of one logical request.
type Result struct {
	// ResponseJSON is the parsed answer object.
	ResponseJSON map[string]any

	// Tries records the attempts actually used, as "n of limit".
	Tries string

	// GenerationTime is the elapsed wall-clock time, formatted as seconds or
	// as minutes and seconds above one minute.
	GenerationTime string
}

// Pipeline executes logical LLM requests against a fixed configuration.
// Each ProcessRequest call owns its payload, attempt counter and timer, so a
// single Pipeline is safe for concurrent use.
type Pipeline struct {
	config Config
}

// New returns a Pipeline for config, filling zero-valued fields with
// defaults (see [Config] and [BackoffConfig]).
func New(config Config) *Pipeline {
	applyDefaults(&config)
	return &Pipeline{config: config}
}

// ProcessRequest runs one logical request: render the payload template, POST
// it, extract and parse the answer, and validate it when requested. Transport
// and extraction failures are retried up to the configured try limit with
// backoff between attempts; template and validation failures are fatal
// immediately (validation subject to [Config.RetrySchemaMismatch]).
//
// The returned error wraps one of the package sentinel errors. Intermediate
// retryable failures are logged at warning level and swallowed; only the
// final occurrence is returned.
func (p *Pipeline) ProcessRequest(ctx context.Context, params Params) (*Result, error) {
	timer := utils.NewTimer()

	payload, err := p.buildPayload(params)
	if err != nil {
		p.config.Logger.Error("payload template rendering failed", "error", err)
		return nil, err
	}

	url := p.config.endpoint()
	limit := p.config.TryLimit

	var lastErr error
	for attempt := 1; attempt <= limit; attempt++ {
		if attempt > 1 {
			backoff := computeBackoff(p.config.Backoff, attempt-2)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %w", ErrTransport, ctx.Err())
			case <-time.After(backoff):
			}
		}

		responseJSON, err := p.attempt(ctx, url, payload, params)
		if err == nil {
			timer.Stop()
			return &Result{
				ResponseJSON:   responseJSON,
				Tries:          fmt.Sprintf("%d of %d", attempt, limit),
				GenerationTime: utils.FormatDuration(timer.GetDuration()),
			}, nil
		}

		lastErr = err

		if !p.retryable(err) || ctx.Err() != nil {
			p.config.Logger.Error("request failed", "attempt", attempt, "error", err)
			return nil, err
		}

		if attempt < limit {
			p.config.Logger.Warn("attempt failed, retrying",
				"attempt", attempt, "limit", limit, "error", err)
		}
	}

	p.config.Logger.Error("all attempts failed", "limit", limit, "error", lastErr)
	return nil, fmt.Errorf("all %d attempts failed: %w", limit, lastErr)
}

// buildPayload renders the template, verifies the result parses as a JSON
// object, and overrides its model field when params carries one.
func (p *Pipeline) buildPayload(params Params) ([]byte, error) {
	rendered := renderTemplate(p.config.PayloadTemplate, params)

	var probe map[string]any
	if err := json.Unmarshal([]byte(rendered), &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigTemplate, err)
	}

	if params.Model != "" {
		withModel, err := sjson.Set(rendered, "model", params.Model)
		if err != nil {
			return nil, fmt.Errorf("%w: setting model field: %v", ErrConfigTemplate, err)
		}
		rendered = withModel
	}

	return []byte(rendered), nil
}

// renderTemplate substitutes every recognized placeholder with its value for
// params.
func renderTemplate(template string, params Params) string {
	schemaJSON := ""
	if params.ContentSchema != nil {
		schemaJSON = params.ContentSchema.String()
	}
	return strings.NewReplacer(
		PlaceholderModel, params.Model,
		PlaceholderGenerationContext, utils.EscapeJSONString(params.GenerationContext),
		PlaceholderContentTemplate, schemaJSON,
		PlaceholderContentSchema, schemaJSON,
		PlaceholderContentSchemaEscaped, utils.EscapeJSONString(schemaJSON),
	).Replace(template)
}

// attempt performs a single POST-extract-parse-validate cycle. Every error it
// returns wraps the sentinel identifying which stage failed.
func (p *Pipeline) attempt(ctx context.Context, url string, payload []byte, params Params) (map[string]any, error) {
	_, body, err := utils.DoPostRaw(ctx, p.config.HTTPClient, url, p.config.APIKey, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	answer := gjson.GetBytes(body, p.config.ResponsePath)
	if !answer.Exists() {
		return nil, fmt.Errorf("%w: response path %q not found in body: %s",
			ErrExtraction, p.config.ResponsePath, utils.TruncateStringDefault(string(body)))
	}

	text := extract.StripReasoning(answer.String(), p.config.ReasoningEndTag)

	span, err := extract.JSONSpan(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	responseJSON, err := extract.ParseObject(span)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	if params.ValidateResponse && params.ContentSchema != nil {
		if !schema.Validate(responseJSON, params.ContentSchema) {
			return nil, fmt.Errorf("%w: answer %s", ErrSchemaMismatch,
				utils.TruncateStringDefault(utils.JSONToString(responseJSON)))
		}
	}

	return responseJSON, nil
}

// retryable reports whether err should consume another attempt. Transport and
// extraction faults are transient; schema mismatches only when configured.
func (p *Pipeline) retryable(err error) bool {
	if errors.Is(err, ErrTransport) || errors.Is(err, ErrExtraction) {
		return true
	}
	if errors.Is(err, ErrSchemaMismatch) {
		return p.config.RetrySchemaMismatch
	}
	return false
}

// computeBackoff returns the backoff duration for the given retry (0-indexed).
// backoff = min(Initial * Factor^retry, Max) + jitter
func computeBackoff(config BackoffConfig, retry int) time.Duration {
	base := float64(config.Initial) * math.Pow(config.Factor, float64(retry))
	if base > float64(config.Max) {
		base = float64(config.Max)
	}
	jitter := base * config.JitterFraction * rand.Float64() //nolint:gosec // non-cryptographic jitter is intentional
	return time.Duration(base + jitter)
}
