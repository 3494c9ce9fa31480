// Package ports declares the driven-side interfaces of the workflow core:
// state persistence, distributed locking, and the injected capabilities
// (turn generation, summarization, transcription) nodes delegate to.
package ports
