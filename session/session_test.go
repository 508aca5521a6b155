package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketfeed/model"
	"marketfeed/wire"
)

type testAck struct {
	OK bool `json:"ok"`
}

func (a testAck) Validate() *wire.Error {
	if !a.OK {
		return wire.NewSubscribe("rejected")
	}
	return nil
}

type testFrame struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

type stubTransformer struct{}

func (stubTransformer) Transform(exchangeTime time.Time, frame testFrame) (model.MarketEvent[model.EventTrade], bool, *wire.Error) {
	return model.NewMarketEvent(exchangeTime, model.BinanceSpot, model.NewInstrument("btc", "usdt"),
		model.EventTrade{Level: model.Level{Price: frame.Price, Size: 1}, IsBuy: true}), true, nil
}

type fakeMsg struct {
	payload []byte
	err     error
}

type fakeConn struct {
	messages []fakeMsg
	idx      int
	writes   []interface{}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	if f.idx >= len(f.messages) {
		return 0, nil, errors.New("connection reset")
	}
	m := f.messages[f.idx]
	f.idx++
	if m.err != nil {
		return 0, nil, m.err
	}
	return websocket.TextMessage, m.payload, nil
}

func (f *fakeConn) WriteMessage(int, []byte) error { return nil }
func (f *fakeConn) WriteJSON(v interface{}) error {
	f.writes = append(f.writes, v)
	return nil
}
func (f *fakeConn) Close() error { return nil }

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func newConfig() Config[testAck, testFrame, model.EventTrade] {
	return Config[testAck, testFrame, model.EventTrade]{
		Exchange:             model.BinanceSpot,
		Stream:               model.Trade,
		URL:                  "wss://example.invalid",
		SubscriptionRequests: []interface{}{map[string]string{"op": "subscribe"}},
		ExpectedResponses:    1,
		ValidationTimeout:    time.Second,
		Transformer:          stubTransformer{},
		BufferSize:           8,
		BackoffBase:          5 * time.Millisecond,
		BackoffCap:           20 * time.Millisecond,
	}
}

func TestSession_HappyPathEmitsEvents(t *testing.T) {
	conn := &fakeConn{messages: []fakeMsg{
		{payload: mustJSON(t, testAck{OK: true})},
		{payload: mustJSON(t, testFrame{Symbol: "btcusdt", Price: 100})},
		{payload: mustJSON(t, testFrame{Symbol: "btcusdt", Price: 101})},
	}}
	dial := func(ctx context.Context, url string) (wire.Conn, error) { return conn, nil }

	cfg := newConfig()
	s := New[testAck, testFrame, model.EventTrade](cfg, dial, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out, err := s.Run(ctx)
	require.Nil(t, err)

	first := <-out
	require.NotNil(t, first.Event)
	assert.Equal(t, 100.0, first.Event.Data.Level.Price)

	second := <-out
	require.NotNil(t, second.Event)
	assert.Equal(t, 101.0, second.Event.Data.Level.Price)
}

func TestSession_FirstConnectFailureIsFatal(t *testing.T) {
	dial := func(ctx context.Context, url string) (wire.Conn, error) {
		return nil, errors.New("dial tcp: refused")
	}
	cfg := newConfig()
	s := New[testAck, testFrame, model.EventTrade](cfg, dial, zerolog.Nop())

	out, err := s.Run(context.Background())
	require.Nil(t, out)
	require.NotNil(t, err)
	assert.Equal(t, wire.KindWebSocketDisconnected, err.Kind)
}

func TestSession_ReconnectsAfterDisconnectAndEmitsStatusEvents(t *testing.T) {
	firstConn := &fakeConn{messages: []fakeMsg{
		{payload: mustJSON(t, testAck{OK: true})},
		{payload: mustJSON(t, testFrame{Symbol: "btcusdt", Price: 100})},
	}}
	secondConn := &fakeConn{messages: []fakeMsg{
		{payload: mustJSON(t, testAck{OK: true})},
		{payload: mustJSON(t, testFrame{Symbol: "btcusdt", Price: 200})},
	}}

	attempt := 0
	dial := func(ctx context.Context, url string) (wire.Conn, error) {
		attempt++
		if attempt == 1 {
			return firstConn, nil
		}
		return secondConn, nil
	}

	cfg := newConfig()
	s := New[testAck, testFrame, model.EventTrade](cfg, dial, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out, err := s.Run(ctx)
	require.Nil(t, err)

	first := <-out
	require.NotNil(t, first.Event)
	assert.Equal(t, 100.0, first.Event.Data.Level.Price)

	// firstConn's frames are exhausted; the next read errors, which is
	// terminal and drives the Backoff -> Connecting -> reconnect cycle.
	disconnected := <-out
	require.NotNil(t, disconnected.Status)
	assert.Equal(t, model.Disconnected, disconnected.Status.Data.State)

	connected := <-out
	require.NotNil(t, connected.Status)
	assert.Equal(t, model.Connected, connected.Status.Data.State)

	second := <-out
	require.NotNil(t, second.Event)
	assert.Equal(t, 200.0, second.Event.Data.Level.Price)
}

// TestSession_InboundControlAnswersHeartbeatWithoutEmitting reproduces a
// venue that pings the client (HTX's {"ping":N} heartbeat): the hook must
// see the raw payload, write the matching reply, and the frame must never
// reach Transformer or the outbound channel.
func TestSession_InboundControlAnswersHeartbeatWithoutEmitting(t *testing.T) {
	conn := &fakeConn{messages: []fakeMsg{
		{payload: mustJSON(t, testAck{OK: true})},
		{payload: []byte(`{"ping":1700000000000}`)},
		{payload: mustJSON(t, testFrame{Symbol: "btcusdt", Price: 100})},
	}}
	dial := func(ctx context.Context, url string) (wire.Conn, error) { return conn, nil }

	cfg := newConfig()
	cfg.InboundControl = func(payload []byte) (interface{}, bool) {
		var ping struct {
			Ping *int64 `json:"ping"`
		}
		if err := json.Unmarshal(payload, &ping); err != nil || ping.Ping == nil {
			return nil, false
		}
		return map[string]int64{"pong": *ping.Ping}, true
	}
	s := New[testAck, testFrame, model.EventTrade](cfg, dial, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out, err := s.Run(ctx)
	require.Nil(t, err)

	event := <-out
	require.NotNil(t, event.Event)
	assert.Equal(t, 100.0, event.Event.Data.Level.Price)

	// writes[0] is the subscription request sent before validation.
	require.Len(t, conn.writes, 2)
	assert.Equal(t, map[string]int64{"pong": 1700000000000}, conn.writes[1])
}
