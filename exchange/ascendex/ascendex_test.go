package ascendex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketfeed/model"
	"marketfeed/transform"
)

func TestMarketTagAndChannel(t *testing.T) {
	tag := MarketTag(model.NewInstrument("btc", "usdt"))
	assert.Equal(t, "BTC/USDT", tag)
	assert.Equal(t, "trades:BTC/USDT", Channel(tag))
}

func TestSubscriptionResponse_Validate(t *testing.T) {
	assert.Nil(t, SubscriptionResponse{M: "sub", Ch: "trades:BTC/USDT"}.Validate())
	err := SubscriptionResponse{M: "error", Reason: "invalid channel"}.Validate()
	require.NotNil(t, err)
}

func TestTradeTransformer_ConvertsBuyerMaker(t *testing.T) {
	btc := model.NewInstrument("btc", "usdt")
	resolver := transform.NewMarketTagResolver(map[string]model.Instrument{"BTC/USDT": btc})
	txr := NewTradeTransformer(resolver, model.AscendExSpot)

	var frame TradeFrame
	frame.M = "trades"
	frame.Symbol = "BTC/USDT"
	frame.Data = []struct {
		P  string `json:"p"`
		Q  string `json:"q"`
		BM bool   `json:"bm"`
	}{{P: "200", Q: "1.25", BM: true}}

	event, ok, err := txr.Transform(time.Now(), frame)
	require.Nil(t, err)
	require.True(t, ok)
	assert.Equal(t, 200.0, event.Data.Level.Price)
	assert.Equal(t, 1.25, event.Data.Level.Size)
	assert.False(t, event.Data.IsBuy)
}

func TestTradeTransformer_NonTradesMessageIsSkipped(t *testing.T) {
	btc := model.NewInstrument("btc", "usdt")
	resolver := transform.NewMarketTagResolver(map[string]model.Instrument{"BTC/USDT": btc})
	txr := NewTradeTransformer(resolver, model.AscendExSpot)

	frame := TradeFrame{M: "sub", Symbol: "BTC/USDT"}
	_, ok, err := txr.Transform(time.Now(), frame)
	require.Nil(t, err)
	assert.False(t, ok)
}
