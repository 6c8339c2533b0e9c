package emit

// Emitter receives and processes observability events from the engine.
//
// Emitters enable pluggable observability backends:
//   - Logging: stdout, files, syslog
//   - Distributed tracing: OpenTelemetry
//   - In-memory capture: tests, what-if dashboards
//
// Implementations should be:
//   - Non-blocking: the engine runs on the caller's goroutine
//   - Thread-safe: one emitter may back concurrent simulations
//   - Resilient: handle failures gracefully (never panic)
type Emitter interface {
	// Emit sends an observability event to the configured backend.
	//
	// Emit should not panic. Errors should be handled internally.
	Emit(event Event)
}
