// Package generate wires the transcoder and the request pipeline into the
// end-to-end journal flow: build generation context from the current page,
// infer the answer schema from a content-template fragment, run the pipeline,
// render the answer's output field back to HTML, create the new journal page
// and cross-link it from the source content.
//
// The host's collaborators (settings store, document registry) are injected
// through [New]; nothing in this package reaches for ambient globals.
package generate
