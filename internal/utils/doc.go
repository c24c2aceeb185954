// Package utils provides shared low-level helpers used throughout the loregen
// internals. It covers HTTP request helpers for JSON round-trips with LLM
// endpoints, string utilities for log-safe output, and a simple elapsed-time
// timer with human-readable formatting.
//
// Key entry points: [DoPostRaw] for synchronous JSON POST round-trips,
// [DoGetSync] for typed GET requests, [Timer] for measuring latency, and
// [FormatDuration] for presenting it.
package utils
