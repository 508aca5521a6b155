// Package wire frames raw WebSocket payloads into typed messages and
// classifies terminal vs. transient errors, mirroring rotom-data's
// error.rs SocketError and protocols/ws/mod.rs wire layer.
package wire

import "fmt"

// Kind is a closed taxonomy of the errors the engine can observe, per
// spec.md §7's table.
type Kind int

const (
	KindWebSocketDisconnected Kind = iota
	KindTerminated
	KindInvalidSequence
	KindSubscribe
	KindDeserialise
	KindOrderBookFindError
	KindTransformerNone
	KindHTTP
	KindTickSizeError
)

// Error is the engine-wide error type. It always carries a Kind so
// is_terminal() and the session's reconnect policy can switch on it
// without string matching, and it wraps the underlying cause so %w-based
// errors.Is/As chains still work.
type Error struct {
	Kind    Kind
	Message string
	Payload string // offending payload, set for Deserialise
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// IsTerminal reports whether this error should trigger the session's
// reconnect path, per spec.md §4.1/§7: true for InvalidSequence,
// WebSocketDisconnected, and Terminated (close frame); false otherwise.
func (e *Error) IsTerminal() bool {
	switch e.Kind {
	case KindInvalidSequence, KindWebSocketDisconnected, KindTerminated:
		return true
	default:
		return false
	}
}

func NewWebSocketDisconnected(cause error) *Error {
	return &Error{Kind: KindWebSocketDisconnected, Message: "WebSocket disconnected", Cause: cause}
}

func NewTerminated(reason string) *Error {
	return &Error{Kind: KindTerminated, Message: fmt.Sprintf("ExchangeStream terminated with closing frame: %s", reason)}
}

func NewInvalidSequence(symbol string, prevLastUpdateID, firstUpdateID uint64) *Error {
	return &Error{
		Kind: KindInvalidSequence,
		Message: fmt.Sprintf(
			"%s got InvalidSequence, first_update_id %d does not follow on from the prev_last_update_id %d",
			symbol, firstUpdateID, prevLastUpdateID,
		),
	}
}

func NewSubscribe(reason string) *Error {
	return &Error{Kind: KindSubscribe, Message: fmt.Sprintf("error subscribing to resources over the socket: %s", reason)}
}

func NewDeserialise(cause error, payload string) *Error {
	return &Error{Kind: KindDeserialise, Message: "deserialising JSON error", Payload: payload, Cause: cause}
}

func NewOrderBookFindError(symbol string) *Error {
	return &Error{Kind: KindOrderBookFindError, Message: fmt.Sprintf("unable to find orderbook for %s", symbol)}
}

func NewTransformerNone() *Error {
	return &Error{Kind: KindTransformerNone, Message: "transformer returned none"}
}

func NewHTTP(cause error) *Error {
	return &Error{Kind: KindHTTP, Message: "HTTP error", Cause: cause}
}

func NewTickSizeError(base, quote string, exchange fmt.Stringer) *Error {
	return &Error{
		Kind:    KindTickSizeError,
		Message: fmt.Sprintf("could not retrieve tick size for %s%s, %s", base, quote, exchange.String()),
	}
}
