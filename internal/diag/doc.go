// Package diag defines the diagnostic model shared by all pipeline phases.
//
// Diagnostic is the central record: a Severity, a compact numeric Code with a
// stable string form (LEX/SYN/SEM/GEN/IO/PRJ/OBS ranges), a short message, a
// primary span and optional notes. Producers emit through a Reporter so the
// storage (Bag) and the rendering (internal/diagfmt) stay decoupled from the
// lexer, parser and lowering passes.
//
// Package diag performs no formatting, IO or CLI integration.
package diag
