// Package exchange defines the per-venue adapter contract and hosts one
// subpackage per supported exchange. Each subpackage contributes the wire
// shapes, subscription payloads, and (where the venue carries an L2 book)
// the sequencing regime described in spec.md §4.5/§6; the session package
// drives them all through this shared Capabilities contract rather than
// a trait-object style dynamic dispatch (spec.md §9).
package exchange

import (
	"time"

	"marketfeed/model"
)

// PingPayload is a keepalive frame an adapter wants the session to emit
// on a fixed interval, with no reply expected.
type PingPayload struct {
	Interval time.Duration
	Message  interface{} // marshalled with WriteJSON; nil means no ping task
}

// Capabilities is the venue-agnostic surface the session state machine
// needs to dial, subscribe to, and keep alive a socket, per spec.md §6.
type Capabilities struct {
	URL                           string
	ExpectedResponses             func(subs []model.ExchangeSubscription) int
	Ping                          PingPayload
	SubscriptionValidationTimeout time.Duration
	InflateGzip                   bool
}

// DefaultExpectedResponses returns len(subs), the common case the spec
// calls out as the default before any per-venue override.
func DefaultExpectedResponses(subs []model.ExchangeSubscription) int {
	return len(subs)
}

// DefaultSubscriptionValidationTimeout is the spec's default of 10s.
const DefaultSubscriptionValidationTimeout = 10 * time.Second
