package generate

import (
	"errors"
	"fmt"
)

// ErrInvalidOptions is returned when an options value is missing a required
// field for its variant.
var ErrInvalidOptions = errors.New("loregen: invalid generation options")

// ContextOptions is the "context" request variant: everything the editor
// surface knows at the moment the user selects text, before generation knobs
// are chosen.
type ContextOptions struct {
	// Subject is the selected text the new entry is about.
	Subject string

	// JournalEntryID identifies the entry the current page belongs to.
	JournalEntryID string

	// OriginalTitle is the title of the page the selection was made in.
	OriginalTitle string

	// PageHTML is the current page's HTML content, used both as generation
	// context and as the target of the cross-link rewrite.
	PageHTML string

	// AdditionalContext is free text the user supplied in the dialog.
	AdditionalContext string
}

func (o ContextOptions) validate() error {
	if o.Subject == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidOptions)
	}
	if o.JournalEntryID == "" {
		return fmt.Errorf("%w: journal entry id is required", ErrInvalidOptions)
	}
	return nil
}

// GenerateOptions is the "generate" request variant: the context plus the
// generation knobs collected from the dialog and the settings store.
type GenerateOptions struct {
	ContextOptions

	// Model is the target model identifier; empty keeps the template's own.
	Model string

	// TemplateHTML is the content-template fragment whose structure the
	// answer must follow.
	TemplateHTML string

	// GlobalContext is the world-level free text configured in settings.
	GlobalContext string
}

func (o GenerateOptions) validate() error {
	if err := o.ContextOptions.validate(); err != nil {
		return err
	}
	if o.TemplateHTML == "" {
		return fmt.Errorf("%w: content template is required", ErrInvalidOptions)
	}
	return nil
}
