// Package observability records workflow telemetry: a per-session
// append-only event log (Recorder) with derived summaries and timelines,
// a Hub that owns recorders across sessions, and Prometheus collectors
// wired up as executor lifecycle hooks.
//
// Nothing here has control-flow authority; it only observes events pushed
// by the executor and router.
package observability
