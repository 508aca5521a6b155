// Package metrics exposes the prometheus counters and gauges emitted by
// the ingestion engine. Adapted from the teacher's market-data metrics
// block (WSConnectionsTotal, WSReconnectsTotal, MarketDataLag, ...).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SessionConnectionsTotal counts WebSocket connect attempts per exchange/session.
	SessionConnectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketfeed_session_connections_total",
			Help: "Total number of WebSocket connection attempts per exchange and stream kind",
		},
		[]string{"exchange", "stream_kind", "status"}, // status: "success", "failed"
	)

	// SessionReconnectsTotal counts reconnect attempts after a terminal error.
	SessionReconnectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketfeed_session_reconnects_total",
			Help: "Total number of session reconnect attempts",
		},
		[]string{"exchange", "stream_kind"},
	)

	// SessionActive tracks the number of sessions currently in the Running state.
	SessionActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "marketfeed_session_active",
			Help: "Number of sessions currently connected and pumping frames",
		},
		[]string{"exchange", "stream_kind"},
	)

	// EventsEmittedTotal counts normalized events sent to a session's outbound channel.
	EventsEmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketfeed_events_emitted_total",
			Help: "Total number of normalized MarketEvent values emitted",
		},
		[]string{"exchange", "stream_kind"},
	)

	// EventsDroppedTotal counts events dropped because a session's outbound
	// channel was at capacity (see SPEC_FULL.md open-question decision on
	// bounded channels).
	EventsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketfeed_events_dropped_total",
			Help: "Total number of events dropped due to a full outbound channel",
		},
		[]string{"exchange", "stream_kind"},
	)

	// RecoverableErrorsTotal counts non-terminal wire/transformer errors.
	RecoverableErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketfeed_recoverable_errors_total",
			Help: "Total number of recoverable (non-terminal) errors observed",
		},
		[]string{"exchange", "kind"}, // kind: "deserialise", "orderbook_find", "transform"
	)

	// EventLagSeconds tracks received_time - exchange_time for any
	// normalized event (trade or book), not only book updates.
	EventLagSeconds = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "marketfeed_event_lag_seconds",
			Help: "Observed lag between exchange-supplied and received timestamps",
		},
		[]string{"exchange", "instrument"},
	)

	// HTTPRequestsTotal is the collector for REST calls made by adapter
	// HTTP clients (book snapshot fetches, ticker precision). No code in
	// this module increments it; httpclient.Client does not record its
	// requests here.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketfeed_http_requests_total",
			Help: "Total number of REST requests issued by adapter HTTP clients",
		},
		[]string{"exchange", "endpoint", "status"},
	)
)
