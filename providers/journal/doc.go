// Package journal defines the contracts against the host's document registry:
// looking up a named entry, creating a sub-page under it with a body and sort
// position, and the permission gate that guards creation. The host
// application owns the real document model; this package only shapes the
// calls the generation glue makes into it.
//
// It also implements the host's internal cross-reference syntax: [CrossLink]
// builds a "@UUID[.pageID]{label}" reference and [LinkSubject] rewrites every
// occurrence of a subject in existing content into one.
//
// The bundled reference implementation lives in the sibling package
// [github.com/leofalp/loregen/providers/journal/memjournal].
package journal
