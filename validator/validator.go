// Package validator implements the post-connect subscription handshake:
// reading acks off a freshly dialled socket until every requested
// subscription is confirmed, timing out or failing fast otherwise.
// Grounded on rotom-data's streams/validator.rs WebSocketValidator.
package validator

import (
	"fmt"
	"time"

	"marketfeed/wire"
)

// Validator is implemented by an adapter's subscription-response type. It
// reports whether the response represents a successful ack; a non-nil
// error is the reason subscription failed outright (e.g. the venue
// rejected the channel/market pair).
type Validator interface {
	Validate() *wire.Error
}

// Validate reads frames off conn as T until expected successes are
// observed or timeout elapses. A frame that fails to deserialize as T is
// treated as early market data delivered ahead of the ack stream and is
// skipped, matching the source's "continue" behaviour regardless of how
// many successes have been seen so far. On success the same conn is
// returned for handoff to the session's run loop.
func Validate[T Validator](conn wire.Conn, expected int, timeout time.Duration, inflateGzip bool) (wire.Conn, *wire.Error) {
	deadline := time.Now().Add(timeout)
	successes := 0

	for successes < expected {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, wire.NewSubscribe(fmt.Sprintf("subscription validation timeout reached: %s", timeout))
		}

		frame, timedOut := readWithTimeout[T](conn, inflateGzip, remaining)
		if timedOut {
			return nil, wire.NewSubscribe(fmt.Sprintf("subscription validation timeout reached: %s", timeout))
		}
		if frame.Skip {
			continue
		}
		if frame.Err != nil {
			switch frame.Err.Kind {
			case wire.KindDeserialise:
				continue
			case wire.KindTerminated:
				return nil, wire.NewSubscribe(fmt.Sprintf("received WebSocket CloseFrame: %s", frame.Err.Message))
			default:
				return nil, wire.NewSubscribe("WebSocket stream terminated unexpectedly")
			}
		}

		if verr := (*frame.Value).Validate(); verr != nil {
			return nil, verr
		}
		successes++
	}

	return conn, nil
}

// readWithTimeout bounds a single ReadNext call to timeout, since
// wire.Conn.ReadMessage has no deadline parameter of its own in the
// interface the codec is built against.
func readWithTimeout[T Validator](conn wire.Conn, inflateGzip bool, timeout time.Duration) (wire.Frame[T], bool) {
	ch := make(chan wire.Frame[T], 1)
	go func() { ch <- wire.ReadNext[T](conn, inflateGzip) }()

	select {
	case frame := <-ch:
		return frame, false
	case <-time.After(timeout):
		return wire.Frame[T]{}, true
	}
}
