package session

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"marketfeed/wire"
)

// Dialer opens a fresh transport connection to url. Injectable so tests
// can supply a fake without dialing a real socket, the same reason
// wire.Conn is an interface rather than *websocket.Conn directly.
type Dialer func(ctx context.Context, url string) (wire.Conn, error)

// DefaultDialer returns a Dialer backed by gorilla/websocket, the
// teacher's transport library (market/websocket_client.go).
func DefaultDialer(handshakeTimeout time.Duration) Dialer {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	return func(ctx context.Context, url string) (wire.Conn, error) {
		conn, _, err := dialer.DialContext(ctx, url, nil)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
}
