package wire

import (
	"encoding/json"
	"errors"

	"github.com/gorilla/websocket"
)

// Conn is the subset of *websocket.Conn the codec needs, so tests can
// supply a fake without dialing a real socket.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteJSON(v interface{}) error
	Close() error
}

// Frame is one decoded outcome of a ReadNext call: exactly one of Value,
// Err, or Skip is meaningful, matching the source's
// Some(Ok(T)) / Some(Err(ErrorKind)) / None trichotomy.
type Frame[T any] struct {
	Value *T
	Err   *Error
	Skip  bool // safe to ignore: ping/pong/other control frames
}

// ReadRaw reads one message off conn and returns its decoded-ready JSON
// payload, without unmarshalling into any particular type. Binary frames
// are gzip-inflated first when inflateGzip is true (HTX and similar
// venues that always send gzip-binary payloads, per SPEC_FULL.md §10).
// skip reports a transport-level control frame (safe to ignore); it is
// never true alongside a non-nil payload or err.
func ReadRaw(conn Conn, inflateGzip bool) (payload []byte, skip bool, err *Error) {
	messageType, payload, readErr := conn.ReadMessage()
	if readErr != nil {
		var closeErr *websocket.CloseError
		if errors.As(readErr, &closeErr) {
			return nil, false, NewTerminated(closeErr.Text)
		}
		return nil, false, NewWebSocketDisconnected(readErr)
	}

	switch messageType {
	case websocket.PingMessage, websocket.PongMessage:
		return nil, true, nil
	case websocket.CloseMessage:
		return nil, false, NewTerminated(string(payload))
	case websocket.BinaryMessage:
		if inflateGzip {
			inflated, gzErr := Inflate(payload)
			if gzErr != nil {
				return nil, false, NewDeserialise(gzErr, string(payload))
			}
			payload = inflated
		}
	}
	return payload, false, nil
}

// DecodeFrame unmarshals a payload obtained from ReadRaw into T.
func DecodeFrame[T any](payload []byte) Frame[T] {
	var value T
	if jsonErr := json.Unmarshal(payload, &value); jsonErr != nil {
		return Frame[T]{Err: NewDeserialise(jsonErr, string(payload))}
	}
	return Frame[T]{Value: &value}
}

// ReadNext reads one frame off conn and decodes it as T, composing ReadRaw
// and DecodeFrame. Most callers (validator, and adapters with no
// application-level control frames of their own) use this directly.
func ReadNext[T any](conn Conn, inflateGzip bool) Frame[T] {
	payload, skip, err := ReadRaw(conn, inflateGzip)
	if skip {
		return Frame[T]{Skip: true}
	}
	if err != nil {
		return Frame[T]{Err: err}
	}
	return DecodeFrame[T](payload)
}
