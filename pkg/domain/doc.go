// Package domain holds the core data model of the FlowGenius workflow:
// the session state, the patch type nodes return, the lifecycle events
// the executor emits, and the shared error types.
//
// Nothing in this package performs I/O. State is mutated only through
// Patch.Apply, which clones before merging so snapshots stay immutable.
package domain
