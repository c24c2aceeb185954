// Package settings defines the Store interface through which the core reads
// its host-managed configuration: payload template, endpoint, credential,
// retry limit, response path and the rest of the namespaced keys listed as
// Key* constants. The host application owns persistence; implementations only
// need string retrieval by key, with typed helpers layered on top.
//
// The bundled reference implementations are [Static] for tests and wiring by
// hand, and the dotenv-backed store in the sibling package
// [github.com/leofalp/loregen/providers/settings/envstore].
package settings
