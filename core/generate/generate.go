package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/leofalp/loregen/core/fragment"
	"github.com/leofalp/loregen/core/pipeline"
	"github.com/leofalp/loregen/core/schema"
	"github.com/leofalp/loregen/providers/journal"
)

// OutputField is the property of the model's answer that carries the
// fragment to be rendered into the new page.
const OutputField = "output"

// Generator runs the full selection-to-page flow against injected host
// collaborators.
type Generator struct {
	pipeline *pipeline.Pipeline
	registry journal.Registry
	logger   *slog.Logger
}

// New returns a Generator using the given pipeline and document registry.
func New(p *pipeline.Pipeline, registry journal.Registry, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{pipeline: p, registry: registry, logger: logger}
}

// Outcome is the result of one successful generation.
type Outcome struct {
	// Page is the journal page created from the answer.
	Page *journal.Page

	// UpdatedContent is the source page content with every occurrence of the
	// subject rewritten into a cross-link to Page.
	UpdatedContent string

	// ResponseJSON is the full parsed answer, including fields beyond the
	// output fragment (categories, related subjects and so on).
	ResponseJSON map[string]any

	// Tries and GenerationTime carry the pipeline's bookkeeping.
	Tries          string
	GenerationTime string
}

// Generate runs one generation: schema inference from the template fragment,
// the pipeline request, answer rendering, page creation and cross-linking.
// The page is created under the entry named by the options; the caller is
// responsible for pushing UpdatedContent back into the editor surface.
func (g *Generator) Generate(ctx context.Context, opts GenerateOptions) (*Outcome, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	entry, err := g.registry.Entry(opts.JournalEntryID)
	if err != nil {
		return nil, err
	}

	contentSchema, err := templateSchema(opts.TemplateHTML)
	if err != nil {
		return nil, err
	}

	instructions, err := BuildInstructions(entry.Name, opts)
	if err != nil {
		return nil, err
	}

	g.logger.Info("processing generation request",
		"subject", opts.Subject, "entry", entry.Name, "model", opts.Model)

	result, err := g.pipeline.ProcessRequest(ctx, pipeline.Params{
		Model:             opts.Model,
		GenerationContext: instructions,
		ContentSchema:     contentSchema,
		ValidateResponse:  true,
	})
	if err != nil {
		return nil, err
	}

	pageHTML, err := renderOutput(result.ResponseJSON)
	if err != nil {
		return nil, err
	}

	page, err := g.registry.CreatePage(ctx, entry.ID, journal.PageData{
		Name:    opts.Subject,
		Content: pageHTML,
	})
	if err != nil {
		return nil, err
	}

	g.logger.Info("journal page created",
		"page", page.ID, "tries", result.Tries, "took", result.GenerationTime)

	return &Outcome{
		Page:           page,
		UpdatedContent: journal.LinkSubject(opts.PageHTML, opts.Subject, page.ID),
		ResponseJSON:   result.ResponseJSON,
		Tries:          result.Tries,
		GenerationTime: result.GenerationTime,
	}, nil
}

// templateSchema converts the content-template fragment into its JSON node
// form and infers the answer schema from it, wrapped in an object whose
// required output property carries the fragment shape.
func templateSchema(templateHTML string) (*schema.Schema, error) {
	el, err := fragment.Parse(templateHTML)
	if err != nil {
		return nil, err
	}
	node, err := fragment.FromElement(el)
	if err != nil {
		return nil, err
	}

	// Round-trip through JSON so inference sees the same decoded value shape
	// the model's answer will arrive in.
	encoded, err := json.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("encoding template fragment: %w", err)
	}
	var sample map[string]any
	if err := json.Unmarshal(encoded, &sample); err != nil {
		return nil, fmt.Errorf("decoding template fragment: %w", err)
	}

	return schema.Infer(map[string]any{
		schema.RequiredPrefix + "precedent_subjects": "",
		schema.RequiredPrefix + "new_subjects":       "",
		schema.RequiredPrefix + OutputField:          sample,
	}), nil
}

// BuildInstructions assembles the free-text generation context in the shape
// the prompt templates expect: the task statement, the current page converted
// to markdown as CONTEXT, and the optional additional and global
// considerations.
func BuildInstructions(entryName string, opts GenerateOptions) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate a fully-detailed and RICH entry for %q from within %q on the following subject: %q. ",
		entryName, opts.OriginalTitle, opts.Subject)
	fmt.Fprintf(&sb, "Expand on %q in granular detail and introduce new subjects within the context of %q.",
		entryName, opts.OriginalTitle)

	if opts.PageHTML != "" {
		contextText, err := htmltomarkdown.ConvertString(opts.PageHTML)
		if err != nil {
			return "", fmt.Errorf("converting page content to context text: %w", err)
		}
		sb.WriteString("\nCONTEXT\n---\n")
		sb.WriteString(strings.TrimSpace(contextText))
		sb.WriteString("\n---")
	}

	if opts.AdditionalContext != "" || opts.GlobalContext != "" {
		sb.WriteString("\nADDITIONAL CONSIDERATIONS:")
		if opts.AdditionalContext != "" {
			sb.WriteString("\n" + opts.AdditionalContext + "\n---")
		}
		if opts.GlobalContext != "" {
			sb.WriteString("\n" + opts.GlobalContext + "\n---")
		}
	}

	fmt.Fprintf(&sb, "\nEmulate and adhere to the formatting and writing style of the CONTEXT provided. All new content must be DIRECTLY related to %q.",
		opts.Subject)
	return sb.String(), nil
}

// renderOutput extracts the output fragment from the parsed answer and
// renders it to HTML.
func renderOutput(responseJSON map[string]any) (string, error) {
	output, ok := responseJSON[OutputField]
	if !ok {
		return "", fmt.Errorf("%w: answer has no %q field", fragment.ErrInvalidInput, OutputField)
	}

	encoded, err := json.Marshal(output)
	if err != nil {
		return "", fmt.Errorf("encoding answer output: %w", err)
	}
	var node fragment.Node
	if err := json.Unmarshal(encoded, &node); err != nil {
		return "", fmt.Errorf("%w: answer output is not a fragment node: %v", fragment.ErrInvalidInput, err)
	}

	return fragment.RenderHTML(&node)
}
