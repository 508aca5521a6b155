package okx

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketfeed/model"
	"marketfeed/transform"
)

func TestMarketTag(t *testing.T) {
	assert.Equal(t, "BTC-USDT", MarketTag(model.NewInstrument("btc", "usdt")))
}

func TestSubscriptionResponse_Validate(t *testing.T) {
	assert.Nil(t, SubscriptionResponse{Event: "subscribe"}.Validate())
	err := SubscriptionResponse{Event: "error", Msg: "no such instrument"}.Validate()
	require.NotNil(t, err)
}

func TestTradeTransformer_ConvertsSide(t *testing.T) {
	btc := model.NewInstrument("btc", "usdt")
	resolver := transform.NewMarketTagResolver(map[string]model.Instrument{"BTC-USDT": btc})
	txr := NewTradeTransformer(resolver, model.OkxSpot)

	var frame TradeFrame
	require.Nil(t, json.Unmarshal([]byte(`{
		"arg": {"channel":"trades","instId":"BTC-USDT"},
		"data": [{"px":"100.5","sz":"2","side":"sell"}]
	}`), &frame))

	event, ok, err := txr.Transform(time.Now(), frame)
	require.Nil(t, err)
	require.True(t, ok)
	assert.Equal(t, 100.5, event.Data.Level.Price)
	assert.Equal(t, 2.0, event.Data.Level.Size)
	assert.False(t, event.Data.IsBuy)
}

func TestTradeTransformer_EmptyDataIsSkipped(t *testing.T) {
	btc := model.NewInstrument("btc", "usdt")
	resolver := transform.NewMarketTagResolver(map[string]model.Instrument{"BTC-USDT": btc})
	txr := NewTradeTransformer(resolver, model.OkxSpot)

	_, ok, err := txr.Transform(time.Now(), TradeFrame{Arg: argEntry{InstID: "BTC-USDT"}})
	require.Nil(t, err)
	assert.False(t, ok)
}
