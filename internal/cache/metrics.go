package cache

// Metrics receives cache lifecycle events. The prometheus-backed
// implementation lives in internal/metrics; tests and callers that do not
// care use NoopMetrics.
type Metrics interface {
	// Hit is called when a valid entry is returned.
	Hit()

	// Miss is called when no valid entry exists and a fetch is needed.
	Miss()

	// Expire is called when an entry is dropped because its TTL passed.
	Expire()

	// SharedFlight is called when a caller joins an already in-flight
	// fetch instead of issuing its own.
	SharedFlight()
}

// NoopMetrics ignores all cache events.
type NoopMetrics struct{}

func (NoopMetrics) Hit()          {}
func (NoopMetrics) Miss()         {}
func (NoopMetrics) Expire()       {}
func (NoopMetrics) SharedFlight() {}
