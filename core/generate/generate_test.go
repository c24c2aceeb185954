package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/leofalp/loregen/core/fragment"
	"github.com/leofalp/loregen/core/pipeline"
	"github.com/leofalp/loregen/providers/journal"
	"github.com/leofalp/loregen/providers/journal/memjournal"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

const testTemplate = `{"model":"test-model","messages":[` +
	`{"role":"system","content":"{{GenerationContext}}"},` +
	`{"role":"user","content":"Respond with JSON matching: {{ContentSchemaEscaped}}"}]}`

// chatBody wraps an answer string in the OpenAI-compatible response shape.
func chatBody(t *testing.T, content string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"content": content}},
		},
	})
	if err != nil {
		t.Fatalf("building chat body: %v", err)
	}
	return body
}

func testPipeline(t *testing.T, serverURL string) *pipeline.Pipeline {
	t.Helper()
	return pipeline.New(pipeline.Config{
		PayloadTemplate: testTemplate,
		BaseURL:         serverURL,
		TryLimit:        1,
		Logger:          quietLogger,
		Backoff:         pipeline.BackoffConfig{Initial: time.Millisecond, Max: time.Millisecond},
	})
}

func TestGenerate(t *testing.T) {
	answer := `{"precedent_subjects":"Ravens Keep","new_subjects":"Order of the Gray",` +
		`"output":{"tagName":"div","children":[` +
		`{"tagName":"h1","children":[{"type":"text","content":"Aldric the Bold"}]},` +
		`{"tagName":"p","children":[{"type":"text","content":"A knight of Ravens Keep."}]}]}}`

	var requestBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write(chatBody(t, answer))
	}))
	defer server.Close()

	registry := memjournal.New()
	registry.AddEntry(journal.Entry{ID: "e1", Name: "Chronicle of the North"})

	gen := New(testPipeline(t, server.URL), registry, quietLogger)
	outcome, err := gen.Generate(context.Background(), GenerateOptions{
		ContextOptions: ContextOptions{
			Subject:        "Aldric the Bold",
			JournalEntryID: "e1",
			OriginalTitle:  "Chronicle of the North",
			PageHTML:       "<p>The keep was founded by Aldric the Bold.</p>",
		},
		Model:        "test-model",
		TemplateHTML: "<div><h1>Name</h1><p>Description</p></div>",
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if outcome.Page == nil {
		t.Fatal("Generate() returned no page")
	}
	if outcome.Page.Name != "Aldric the Bold" {
		t.Errorf("page name = %q, want the subject", outcome.Page.Name)
	}
	wantHTML := "<div><h1>Aldric the Bold</h1><p>A knight of Ravens Keep.</p></div>"
	if outcome.Page.Content != wantHTML {
		t.Errorf("page content = %q, want %q", outcome.Page.Content, wantHTML)
	}

	wantLink := journal.CrossLink(outcome.Page.ID, "Aldric the Bold")
	wantUpdated := fmt.Sprintf("<p>The keep was founded by %s.</p>", wantLink)
	if outcome.UpdatedContent != wantUpdated {
		t.Errorf("updated content = %q, want %q", outcome.UpdatedContent, wantUpdated)
	}

	if outcome.ResponseJSON["new_subjects"] != "Order of the Gray" {
		t.Errorf("ResponseJSON new_subjects = %v", outcome.ResponseJSON["new_subjects"])
	}
	if outcome.Tries != "1 of 1" {
		t.Errorf("Tries = %q, want %q", outcome.Tries, "1 of 1")
	}

	// The created page lands in the registry, not just the outcome.
	entry, err := registry.Entry("e1")
	if err != nil {
		t.Fatalf("Entry() error = %v", err)
	}
	if len(entry.Pages) != 1 || entry.Pages[0].Content != wantHTML {
		t.Errorf("registry pages = %+v, want one page with the rendered content", entry.Pages)
	}

	// The rendered request must carry the inferred schema and the
	// instructions, already escaped into valid JSON.
	var payload map[string]any
	if err := json.Unmarshal(requestBody, &payload); err != nil {
		t.Fatalf("request body is not valid JSON: %v\n%s", err, requestBody)
	}
	if !strings.Contains(string(requestBody), `\"tagName\"`) {
		t.Error("request body does not embed the escaped content schema")
	}
}

func TestGenerate_Errors(t *testing.T) {
	okAnswer := `{"precedent_subjects":"","new_subjects":"","output":{"tagName":"p","children":[{"type":"text","content":"x"}]}}`

	tests := []struct {
		name     string
		answer   string
		registry *memjournal.Registry
		opts     GenerateOptions
		wantErr  error
	}{
		{
			name:     "missing subject",
			answer:   okAnswer,
			registry: seeded(),
			opts: GenerateOptions{
				ContextOptions: ContextOptions{JournalEntryID: "e1"},
				TemplateHTML:   "<p>x</p>",
			},
			wantErr: ErrInvalidOptions,
		},
		{
			name:     "missing template",
			answer:   okAnswer,
			registry: seeded(),
			opts: GenerateOptions{
				ContextOptions: ContextOptions{Subject: "s", JournalEntryID: "e1"},
			},
			wantErr: ErrInvalidOptions,
		},
		{
			name:     "unknown entry",
			answer:   okAnswer,
			registry: seeded(),
			opts: GenerateOptions{
				ContextOptions: ContextOptions{Subject: "s", JournalEntryID: "nope"},
				TemplateHTML:   "<p>x</p>",
			},
			wantErr: journal.ErrEntryNotFound,
		},
		{
			name:     "template without element",
			answer:   okAnswer,
			registry: seeded(),
			opts: GenerateOptions{
				ContextOptions: ContextOptions{Subject: "s", JournalEntryID: "e1"},
				TemplateHTML:   "just text",
			},
			wantErr: fragment.ErrInvalidInput,
		},
		{
			name:     "answer output is not a fragment",
			answer:   `{"precedent_subjects":"","new_subjects":"","output":{"tagName":""}}`,
			registry: seeded(),
			opts: GenerateOptions{
				ContextOptions: ContextOptions{Subject: "s", JournalEntryID: "e1"},
				TemplateHTML:   "<p>x</p>",
			},
			wantErr: fragment.ErrInvalidInput,
		},
		{
			name:     "permission gate refuses",
			answer:   okAnswer,
			registry: seededReadOnly(),
			opts: GenerateOptions{
				ContextOptions: ContextOptions{Subject: "s", JournalEntryID: "e1"},
				TemplateHTML:   "<p>x</p>",
			},
			wantErr: journal.ErrPermissionDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write(chatBody(t, tt.answer))
			}))
			defer server.Close()

			gen := New(testPipeline(t, server.URL), tt.registry, quietLogger)
			_, err := gen.Generate(context.Background(), tt.opts)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Generate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func seeded() *memjournal.Registry {
	r := memjournal.New()
	r.AddEntry(journal.Entry{ID: "e1", Name: "Chronicle"})
	return r
}

func seededReadOnly() *memjournal.Registry {
	r := memjournal.New(memjournal.WithReadOnly())
	r.AddEntry(journal.Entry{ID: "e1", Name: "Chronicle"})
	return r
}

func TestBuildInstructions(t *testing.T) {
	opts := GenerateOptions{
		ContextOptions: ContextOptions{
			Subject:           "Aldric the Bold",
			JournalEntryID:    "e1",
			OriginalTitle:     "Ravens Keep",
			PageHTML:          "<p>The keep stands on a cliff.</p>",
			AdditionalContext: "Keep the tone grim.",
		},
		GlobalContext: "The world is called Eryndor.",
	}

	got, err := BuildInstructions("Chronicle of the North", opts)
	if err != nil {
		t.Fatalf("BuildInstructions() error = %v", err)
	}

	for _, want := range []string{
		`"Chronicle of the North"`,
		`"Ravens Keep"`,
		`"Aldric the Bold"`,
		"CONTEXT\n---\nThe keep stands on a cliff.",
		"ADDITIONAL CONSIDERATIONS:",
		"Keep the tone grim.",
		"The world is called Eryndor.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("instructions missing %q:\n%s", want, got)
		}
	}
}

func TestBuildInstructions_OmitsEmptySections(t *testing.T) {
	got, err := BuildInstructions("Chronicle", GenerateOptions{
		ContextOptions: ContextOptions{Subject: "s", JournalEntryID: "e1"},
	})
	if err != nil {
		t.Fatalf("BuildInstructions() error = %v", err)
	}
	if strings.Contains(got, "CONTEXT") {
		t.Errorf("instructions contain a CONTEXT block without page content:\n%s", got)
	}
	if strings.Contains(got, "ADDITIONAL CONSIDERATIONS") {
		t.Errorf("instructions contain a considerations block without any:\n%s", got)
	}
}

func TestTemplateSchema(t *testing.T) {
	s, err := templateSchema("<div><h1>Name</h1></div>")
	if err != nil {
		t.Fatalf("templateSchema() error = %v", err)
	}

	if s.Type != "object" {
		t.Fatalf("schema type = %q, want object", s.Type)
	}
	want := []string{"new_subjects", OutputField, "precedent_subjects"}
	if fmt.Sprint(s.Required) != fmt.Sprint(want) {
		t.Errorf("required = %v, want %v", s.Required, want)
	}
	output := s.Properties[OutputField]
	if output == nil || output.Type != "object" {
		t.Fatalf("output property = %+v, want an object schema", output)
	}
	if output.Properties["tagName"] == nil || output.Properties["tagName"].Type != "string" {
		t.Errorf("output tagName schema = %+v, want string", output.Properties["tagName"])
	}
	if output.Properties["children"] == nil || output.Properties["children"].Type != "array" {
		t.Errorf("output children schema = %+v, want array", output.Properties["children"])
	}
}
