package metrics

import "time"

// SessionRecorder is a thin per-session facade over the package-level
// prometheus collectors, adapted from the teacher's WSMetricsRecorder
// (market/ws_metrics.go) which scoped RecordConnection/RecordReconnect
// calls to one websocket client instance.
type SessionRecorder struct {
	Exchange   string
	StreamKind string
}

// NewSessionRecorder builds a recorder scoped to one exchange/stream pair.
func NewSessionRecorder(exchange, streamKind string) *SessionRecorder {
	return &SessionRecorder{Exchange: exchange, StreamKind: streamKind}
}

// RecordConnection records a single connect attempt's outcome.
func (r *SessionRecorder) RecordConnection(success bool) {
	status := "success"
	if !success {
		status = "failed"
	}
	SessionConnectionsTotal.WithLabelValues(r.Exchange, r.StreamKind, status).Inc()
}

// RecordRunning flips the active gauge to 1 once validation succeeds.
func (r *SessionRecorder) RecordRunning() {
	SessionActive.WithLabelValues(r.Exchange, r.StreamKind).Set(1)
}

// RecordStopped flips the active gauge back to 0 on disconnect.
func (r *SessionRecorder) RecordStopped() {
	SessionActive.WithLabelValues(r.Exchange, r.StreamKind).Set(0)
}

// RecordReconnect increments the reconnect counter before a backoff sleep.
func (r *SessionRecorder) RecordReconnect() {
	SessionReconnectsTotal.WithLabelValues(r.Exchange, r.StreamKind).Inc()
}

// RecordEventEmitted increments the emitted-event counter.
func (r *SessionRecorder) RecordEventEmitted() {
	EventsEmittedTotal.WithLabelValues(r.Exchange, r.StreamKind).Inc()
}

// RecordEventDropped increments the dropped-event counter.
func (r *SessionRecorder) RecordEventDropped() {
	EventsDroppedTotal.WithLabelValues(r.Exchange, r.StreamKind).Inc()
}

// RecordRecoverableError increments the recoverable-error counter by kind.
func (r *SessionRecorder) RecordRecoverableError(kind string) {
	RecoverableErrorsTotal.WithLabelValues(r.Exchange, kind).Inc()
}

// RecordEventLag records the gap between an event's exchange and received times.
func (r *SessionRecorder) RecordEventLag(instrument string, exchangeTime, receivedTime time.Time) {
	lag := receivedTime.Sub(exchangeTime).Seconds()
	if lag >= 0 && lag < 60 {
		EventLagSeconds.WithLabelValues(r.Exchange, instrument).Set(lag)
	}
}
