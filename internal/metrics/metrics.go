// Package metrics holds the Prometheus collectors for the server,
// exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHitsTotal counts reads served from a valid cache entry.
	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "response_cache_hits_total",
		Help: "Total number of response cache hits",
	})

	// CacheMissesTotal counts reads that had to start an upstream fetch.
	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "response_cache_misses_total",
		Help: "Total number of response cache misses",
	})

	// CacheExpiriesTotal counts entries dropped because their TTL passed.
	CacheExpiriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "response_cache_expiries_total",
		Help: "Total number of response cache entries expired",
	})

	// CacheSharedFlightsTotal counts callers that joined an in-flight
	// fetch instead of issuing their own.
	CacheSharedFlightsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "response_cache_shared_flights_total",
		Help: "Total number of callers coalesced into an in-flight fetch",
	})

	// RoomsCreatedTotal counts watch-together rooms created.
	RoomsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rooms_created_total",
		Help: "Total number of watch-together rooms created",
	})

	// ChatMessagesTotal counts chat messages sent across all rooms.
	ChatMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "room_chat_messages_total",
		Help: "Total number of chat messages sent",
	})

	// WebsocketConnections tracks currently open room subscriptions.
	WebsocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "room_websocket_connections",
		Help: "Number of currently open room websocket connections",
	})
)

// CacheCollector adapts the collectors above to the cache.Metrics
// interface.
type CacheCollector struct{}

func (CacheCollector) Hit()          { CacheHitsTotal.Inc() }
func (CacheCollector) Miss()         { CacheMissesTotal.Inc() }
func (CacheCollector) Expire()       { CacheExpiriesTotal.Inc() }
func (CacheCollector) SharedFlight() { CacheSharedFlightsTotal.Inc() }
