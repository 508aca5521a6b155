package validator

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketfeed/wire"
)

type ackResponse struct {
	OK bool `json:"ok"`
}

func (a ackResponse) Validate() *wire.Error {
	if !a.OK {
		return wire.NewSubscribe("venue rejected subscription")
	}
	return nil
}

type fakeConn struct {
	messages []fakeMessage
	idx      int
}

type fakeMessage struct {
	messageType int
	payload     []byte
	err         error
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	if f.idx >= len(f.messages) {
		return 0, nil, errors.New("no more messages")
	}
	m := f.messages[f.idx]
	f.idx++
	return m.messageType, m.payload, m.err
}

func (f *fakeConn) WriteMessage(int, []byte) error { return nil }
func (f *fakeConn) WriteJSON(interface{}) error     { return nil }
func (f *fakeConn) Close() error                    { return nil }

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestValidate_SuccessAfterExpectedAcks(t *testing.T) {
	conn := &fakeConn{messages: []fakeMessage{
		{messageType: websocket.TextMessage, payload: mustJSON(t, ackResponse{OK: true})},
		{messageType: websocket.TextMessage, payload: mustJSON(t, ackResponse{OK: true})},
	}}

	got, err := Validate[ackResponse](conn, 2, time.Second, false)
	require.Nil(t, err)
	assert.Same(t, conn, got)
}

func TestValidate_FailureResponseIsTerminal(t *testing.T) {
	conn := &fakeConn{messages: []fakeMessage{
		{messageType: websocket.TextMessage, payload: mustJSON(t, ackResponse{OK: false})},
	}}

	_, err := Validate[ackResponse](conn, 1, time.Second, false)
	require.NotNil(t, err)
	assert.Equal(t, wire.KindSubscribe, err.Kind)
}

func TestValidate_SkipsUnparseableFrameBeforeFirstSuccess(t *testing.T) {
	conn := &fakeConn{messages: []fakeMessage{
		{messageType: websocket.TextMessage, payload: []byte("not json")},
		{messageType: websocket.TextMessage, payload: mustJSON(t, ackResponse{OK: true})},
	}}

	_, err := Validate[ackResponse](conn, 1, time.Second, false)
	require.Nil(t, err)
}

func TestValidate_SkipsEarlyMarketDataAfterFirstSuccess(t *testing.T) {
	conn := &fakeConn{messages: []fakeMessage{
		{messageType: websocket.TextMessage, payload: mustJSON(t, ackResponse{OK: true})},
		{messageType: websocket.TextMessage, payload: []byte(`{not valid json`)},
		{messageType: websocket.TextMessage, payload: mustJSON(t, ackResponse{OK: true})},
	}}

	_, err := Validate[ackResponse](conn, 2, time.Second, false)
	require.Nil(t, err)
}

// blockingConn never delivers a frame until release is closed, so only
// the validation timeout can end Validate.
type blockingConn struct {
	fakeConn
	release chan struct{}
}

func (b *blockingConn) ReadMessage() (int, []byte, error) {
	<-b.release
	return 0, nil, errors.New("released")
}

func TestValidate_TimeoutReturnsSubscribeError(t *testing.T) {
	conn := &blockingConn{release: make(chan struct{})}
	defer close(conn.release)

	_, err := Validate[ackResponse](conn, 1, 20*time.Millisecond, false)
	require.NotNil(t, err)
	assert.Equal(t, wire.KindSubscribe, err.Kind)
}

func TestValidate_CloseFrameIsTerminal(t *testing.T) {
	closeErr := &websocket.CloseError{Code: websocket.CloseNormalClosure, Text: "bye"}
	conn := &fakeConn{messages: []fakeMessage{
		{err: closeErr},
	}}

	_, err := Validate[ackResponse](conn, 1, time.Second, false)
	require.NotNil(t, err)
	assert.Equal(t, wire.KindSubscribe, err.Kind)
}
