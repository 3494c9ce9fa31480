// Package session provides the process-wide session registry: creation,
// lookup, and removal of session states over a pluggable store, with
// per-session serialization (and optional distributed locking) so
// concurrent ticks for the same session can never interleave.
package session
