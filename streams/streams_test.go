package streams

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketfeed/model"
	"marketfeed/session"
	"marketfeed/wire"
)

func tradeOutput(exchangeID model.ExchangeId, price float64) session.Output[model.EventTrade] {
	evt := model.NewMarketEvent(time.Now(), exchangeID, model.NewInstrument("btc", "usdt"),
		model.EventTrade{Level: model.Level{Price: price}, IsBuy: true})
	return session.Output[model.EventTrade]{Event: &evt}
}

func TestStreams_JoinMapMergesAllExchanges(t *testing.T) {
	binanceCh := make(chan session.Output[model.EventTrade], 1)
	poloniexCh := make(chan session.Output[model.EventTrade], 1)
	binanceCh <- tradeOutput(model.BinanceSpot, 100)
	poloniexCh <- tradeOutput(model.PoloniexSpot, 200)
	close(binanceCh)
	close(poloniexCh)

	starters := map[model.ExchangeId]Starter[model.EventTrade]{
		model.BinanceSpot:  func(ctx context.Context) (<-chan session.Output[model.EventTrade], *wire.Error) { return binanceCh, nil },
		model.PoloniexSpot: func(ctx context.Context) (<-chan session.Output[model.EventTrade], *wire.Error) { return poloniexCh, nil },
	}

	built, err := Build[model.EventTrade](context.Background(), starters)
	require.Nil(t, err)

	ch, ok := built.Select(model.BinanceSpot)
	assert.True(t, ok)
	assert.NotNil(t, ch)

	seen := map[model.ExchangeId]float64{}
	for pair := range built.JoinMap(context.Background()) {
		seen[pair.Exchange] = pair.Event.Data.Level.Price
	}
	assert.Equal(t, 100.0, seen[model.BinanceSpot])
	assert.Equal(t, 200.0, seen[model.PoloniexSpot])
}

func TestBuild_PropagatesStarterError(t *testing.T) {
	starters := map[model.ExchangeId]Starter[model.EventTrade]{
		model.BinanceSpot: func(ctx context.Context) (<-chan session.Output[model.EventTrade], *wire.Error) {
			return nil, wire.NewWebSocketDisconnected(assert.AnError)
		},
	}
	_, err := Build[model.EventTrade](context.Background(), starters)
	require.NotNil(t, err)
}

func TestCoerceToDataKind_RelaysTradeEvents(t *testing.T) {
	in := make(chan session.Output[model.EventTrade], 1)
	in <- tradeOutput(model.BinanceSpot, 42)
	close(in)

	out := CoerceToDataKind[model.EventTrade](context.Background(), in, model.ToDataKindTrade)
	evt := <-out
	trade, ok := evt.Data.TradeData()
	require.True(t, ok)
	assert.Equal(t, 42.0, trade.Level.Price)
}

func TestBuildDynamic_GroupsTuplesAndMerges(t *testing.T) {
	tuples := []Tuple{
		{Exchange: model.BinanceSpot, Base: "btc", Quote: "usdt", Kind: model.Trade},
		{Exchange: model.BinanceSpot, Base: "eth", Quote: "usdt", Kind: model.Trade},
	}

	var capturedBatchSize int
	starters := map[model.ExchangeId]map[model.StreamKind]DynamicStarter{
		model.BinanceSpot: {
			model.Trade: func(ctx context.Context, batch []Tuple) (<-chan model.MarketEvent[model.DataKind], *wire.Error) {
				capturedBatchSize = len(batch)
				ch := make(chan model.MarketEvent[model.DataKind], 1)
				ch <- model.ToDataKindTrade(model.NewMarketEvent(time.Now(), model.BinanceSpot, model.NewInstrument("btc", "usdt"),
					model.EventTrade{Level: model.Level{Price: 1}, IsBuy: true}))
				close(ch)
				return ch, nil
			},
		},
	}

	ds, err := BuildDynamic(context.Background(), tuples, starters)
	require.Nil(t, err)
	assert.Equal(t, 2, capturedBatchSize)

	count := 0
	for range ds.Merge(context.Background()) {
		count++
	}
	assert.Equal(t, 1, count)
}

func TestBuildDynamic_UnknownExchangeIsError(t *testing.T) {
	tuples := []Tuple{{Exchange: model.OkxSpot, Base: "btc", Quote: "usdt", Kind: model.Trade}}
	_, err := BuildDynamic(context.Background(), tuples, map[model.ExchangeId]map[model.StreamKind]DynamicStarter{})
	require.NotNil(t, err)
}
