/*
Package flowgenius is the workflow core of a staged idea-development chat:
brainstorm, then summary, then PRD. It owns the session state, decides
which processing node runs next from the last user action and current
stage, applies node patches atomically, and records execution telemetry.

The engine runs one "tick" at a time. A tick validates the input state,
routes to at most one node (process a user turn, transcribe voice input,
generate a summary or PRD), merges the node's sparse patch into a fresh
state snapshot, and returns it. Callers drive multi-step advancement by
feeding each returned state into the next call.

Node failures never crash a tick: they fold into the state's error field
so a reloaded UI can still display and retry them. Only structural
validation failures propagate.

# Usage

	eng, err := flowgenius.New()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	state, err := eng.CreateSession(ctx, "session-123", "")
	if err != nil {
		log.Fatal(err)
	}

	// First tick seeds the assistant welcome message.
	state, err = eng.Execute(ctx, state)
	if err != nil {
		log.Fatal(err)
	}

Real deployments inject their own generation and transcription services
via WithCapabilities, a Redis store via WithStore, and expose the engine
over the HTTP boundary in pkg/adapters/http.
*/
package flowgenius
