// Package memjournal provides a concurrency-safe in-memory
// [journal.Registry]. It stands in for the host's document registry in tests
// and in standalone runs of the generation glue.
package memjournal

import (
	"context"
	"fmt"
	"sync"

	"github.com/leofalp/loregen/providers/journal"
)

// Registry is a simple in-memory journal store. It uses RWMutex to guard
// access and is efficient for read-heavy workloads.
type Registry struct {
	mu       sync.RWMutex
	entries  map[string]*journal.Entry
	nextPage int
	readOnly bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithReadOnly makes the permission gate refuse page creation, mimicking a
// host user without journal-create rights.
func WithReadOnly() Option {
	return func(r *Registry) { r.readOnly = true }
}

// New returns an empty registry ready for immediate use.
func New(opts ...Option) *Registry {
	r := &Registry{entries: map[string]*journal.Entry{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Ensure Registry implements journal.Registry at compile time.
var _ journal.Registry = (*Registry)(nil)

// AddEntry stores a copy of entry, replacing any entry with the same ID.
func (r *Registry) AddEntry(entry journal.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := entry
	r.entries[entry.ID] = &stored
}

// Entry implements [journal.Registry].
func (r *Registry) Entry(id string) (*journal.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", journal.ErrEntryNotFound, id)
	}
	copied := *entry
	copied.Pages = append([]journal.Page(nil), entry.Pages...)
	return &copied, nil
}

// CanCreate implements [journal.Registry].
func (r *Registry) CanCreate() bool {
	return !r.readOnly
}

// CreatePage implements [journal.Registry]. The new page is appended with the
// next sort position when data.Sort is zero.
func (r *Registry) CreatePage(_ context.Context, entryID string, data journal.PageData) (*journal.Page, error) {
	if !r.CanCreate() {
		return nil, journal.ErrPermissionDenied
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[entryID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", journal.ErrEntryNotFound, entryID)
	}

	sort := data.Sort
	if sort == 0 {
		sort = journal.NextSort(entry.Pages)
	}

	r.nextPage++
	page := journal.Page{
		ID:      fmt.Sprintf("page-%d", r.nextPage),
		Name:    data.Name,
		Content: data.Content,
		Sort:    sort,
	}
	entry.Pages = append(entry.Pages, page)

	created := page
	return &created, nil
}
