// Package fragment converts between simplified HTML fragments and their JSON
// node-tree representation. The JSON form is what gets embedded in LLM
// payloads as a content template, and what comes back in model answers before
// being rendered into HTML again for the host editor.
//
// The main entry points are [FromElement] for the HTML-to-JSON direction,
// [Render] and [RenderHTML] for the JSON-to-HTML direction, and [Parse] for
// turning a raw fragment string into the element node FromElement expects.
//
// The round trip is structural, not literal: whitespace-only text nodes and
// element attributes are intentionally dropped, and tag names are lowercased.
package fragment
