package exmo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketfeed/model"
	"marketfeed/transform"
)

func TestMarketTagAndTopic(t *testing.T) {
	tag := MarketTag(model.NewInstrument("btc", "usdt"))
	assert.Equal(t, "BTC_USDT", tag)
	assert.Equal(t, "spot/trades:BTC_USDT", Topic(tag))
}

func TestSubscriptionResponse_Validate(t *testing.T) {
	assert.Nil(t, SubscriptionResponse{Event: "subscribed"}.Validate())
	err := SubscriptionResponse{Event: "error", Message: "unknown topic"}.Validate()
	require.NotNil(t, err)
}

func TestTradeTransformer_ConvertsType(t *testing.T) {
	btc := model.NewInstrument("btc", "usdt")
	resolver := transform.NewMarketTagResolver(map[string]model.Instrument{"BTC_USDT": btc})
	txr := NewTradeTransformer(resolver, model.ExmoSpot)

	var frame TradeFrame
	frame.Topic = "spot/trades:BTC_USDT"
	frame.Data.Price = "101.2"
	frame.Data.Qty = "0.5"
	frame.Data.Type = "buy"

	event, ok, err := txr.Transform(time.Now(), frame)
	require.Nil(t, err)
	require.True(t, ok)
	assert.Equal(t, 101.2, event.Data.Level.Price)
	assert.Equal(t, 0.5, event.Data.Level.Size)
	assert.True(t, event.Data.IsBuy)
}
