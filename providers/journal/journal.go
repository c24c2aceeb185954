package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// SortStep is the spacing between consecutive page sort values, leaving room
// for the host to insert pages between existing ones without renumbering.
const SortStep = 100000

// ErrEntryNotFound is returned when no entry exists for the requested id.
var ErrEntryNotFound = errors.New("loregen: journal entry not found")

// ErrPermissionDenied is returned when the registry's permission gate refuses
// page creation for the current user.
var ErrPermissionDenied = errors.New("loregen: no permission to create journal pages")

// Entry is a named journal entry that pages can be created under.
type Entry struct {
	ID    string
	Name  string
	Pages []Page
}

// Page is a single content page of an entry.
type Page struct {
	ID      string
	Name    string
	Content string
	Sort    int
}

// PageData carries the fields for a page about to be created. Sort is
// assigned by the registry when zero.
type PageData struct {
	Name    string
	Content string
	Sort    int
}

// Registry is the contract against the host's document registry.
type Registry interface {
	// Entry looks up an entry by id, returning ErrEntryNotFound when absent.
	Entry(id string) (*Entry, error)

	// CreatePage creates a new page under the entry with the given id and
	// returns the created page with its assigned ID and sort position.
	// Implementations must check the permission gate first and return
	// ErrPermissionDenied when it refuses.
	CreatePage(ctx context.Context, entryID string, data PageData) (*Page, error)

	// CanCreate reports whether the current user may create pages.
	CanCreate() bool
}

// NextSort returns the sort position for a page appended after the existing
// ones: zero for the first page, last sort plus [SortStep] otherwise.
func NextSort(pages []Page) int {
	if len(pages) == 0 {
		return 0
	}
	return pages[len(pages)-1].Sort + SortStep
}

// CrossLink renders the host's internal reference syntax for a page-relative
// link with the given display label.
func CrossLink(pageID, label string) string {
	return fmt.Sprintf("@UUID[.%s]{%s}", pageID, label)
}

// LinkSubject rewrites every occurrence of subject inside content into a
// cross-link pointing at pageID, so the source document ends up referencing
// the freshly created page.
func LinkSubject(content, subject, pageID string) string {
	if subject == "" {
		return content
	}
	return strings.ReplaceAll(content, subject, CrossLink(pageID, subject))
}
