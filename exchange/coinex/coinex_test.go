package coinex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketfeed/model"
	"marketfeed/transform"
)

func TestMarketTag(t *testing.T) {
	assert.Equal(t, "BTCUSDT", MarketTag(model.NewInstrument("btc", "usdt")))
}

func TestSubscriptionResponse_Validate(t *testing.T) {
	assert.Nil(t, SubscriptionResponse{ID: 1}.Validate())
	err := SubscriptionResponse{ID: 1, Error: &struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}{Code: 1, Message: "invalid market"}}.Validate()
	require.NotNil(t, err)
}

func TestTradeTransformer_ConvertsType(t *testing.T) {
	btc := model.NewInstrument("btc", "usdt")
	resolver := transform.NewMarketTagResolver(map[string]model.Instrument{"BTCUSDT": btc})
	txr := NewTradeTransformer(resolver, model.CoinExSpot)

	var frame TradeFrame
	frame.Method = "deals.update"
	frame.Params.Market = "BTCUSDT"
	frame.Params.Deals = []struct {
		Price  string `json:"price"`
		Amount string `json:"amount"`
		Type   string `json:"type"`
	}{{Price: "100.5", Amount: "2", Type: "sell"}}

	event, ok, err := txr.Transform(time.Now(), frame)
	require.Nil(t, err)
	require.True(t, ok)
	assert.Equal(t, 100.5, event.Data.Level.Price)
	assert.Equal(t, 2.0, event.Data.Level.Size)
	assert.False(t, event.Data.IsBuy)
}

func TestTradeTransformer_EmptyDealsIsSkipped(t *testing.T) {
	btc := model.NewInstrument("btc", "usdt")
	resolver := transform.NewMarketTagResolver(map[string]model.Instrument{"BTCUSDT": btc})
	txr := NewTradeTransformer(resolver, model.CoinExSpot)

	var frame TradeFrame
	frame.Params.Market = "BTCUSDT"
	_, ok, err := txr.Transform(time.Now(), frame)
	require.Nil(t, err)
	assert.False(t, ok)
}
