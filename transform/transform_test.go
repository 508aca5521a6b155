package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketfeed/book"
	"marketfeed/model"
	"marketfeed/wire"
)

type fakeTradeFrame struct {
	Tag   string
	Price float64
	Size  float64
	IsBuy bool
}

func TestStatelessTransformer_ResolvesAndConverts(t *testing.T) {
	btc := model.NewInstrument("btc", "usdt")
	resolver := NewMarketTagResolver(map[string]model.Instrument{"btcusdt": btc})

	transformer := &StatelessTransformer[fakeTradeFrame, model.EventTrade]{
		Resolver: resolver,
		TagOf:    func(f fakeTradeFrame) string { return f.Tag },
		Convert: func(f fakeTradeFrame, _ model.Instrument) (model.EventTrade, bool) {
			return model.EventTrade{Level: model.Level{Price: f.Price, Size: f.Size}, IsBuy: f.IsBuy}, true
		},
		Exchange: model.BinanceSpot,
	}

	event, ok, err := transformer.Transform(time.Now(), fakeTradeFrame{Tag: "btcusdt", Price: 100, Size: 1, IsBuy: true})
	require.Nil(t, err)
	require.True(t, ok)
	assert.Equal(t, btc, event.Instrument)
	assert.Equal(t, 100.0, event.Data.Level.Price)
}

func TestStatelessTransformer_UnknownTagIsFindError(t *testing.T) {
	resolver := NewMarketTagResolver(map[string]model.Instrument{})
	transformer := &StatelessTransformer[fakeTradeFrame, model.EventTrade]{
		Resolver: resolver,
		TagOf:    func(f fakeTradeFrame) string { return f.Tag },
		Convert:  func(f fakeTradeFrame, _ model.Instrument) (model.EventTrade, bool) { return model.EventTrade{}, true },
	}

	_, ok, err := transformer.Transform(time.Now(), fakeTradeFrame{Tag: "ethusdt"})
	assert.False(t, ok)
	require.NotNil(t, err)
}

type fakeBookUpdate struct {
	Tag   string
	Price float64
	Size  float64
}

type fakeUpdater struct{}

func (fakeUpdater) Update(ob *book.OrderBook, update fakeBookUpdate) (*model.EventOrderBook, *wire.Error) {
	ob.ApplyDelta([]model.Level{{Price: update.Price, Size: update.Size}}, nil, time.Now())
	snap := ob.Snapshot(0, time.Now())
	return &snap, nil
}

func TestBookTransformer_AppliesUpdateAndEmits(t *testing.T) {
	btc := model.NewInstrument("btc", "usdt")
	resolver := NewMarketTagResolver(map[string]model.Instrument{"btcusdt": btc})
	books := map[string]*book.InstrumentOrderBook[fakeBookUpdate, fakeUpdater]{
		"btcusdt": book.NewInstrumentOrderBook[fakeBookUpdate, fakeUpdater](btc, fakeUpdater{}, 0.01),
	}

	bt := NewBookTransformer[fakeBookUpdate, fakeUpdater](resolver, func(u fakeBookUpdate) string { return u.Tag }, books, model.BinanceSpot)

	event, ok, err := bt.Transform(time.Now(), fakeBookUpdate{Tag: "btcusdt", Price: 100, Size: 1})
	require.Nil(t, err)
	require.True(t, ok)
	require.Len(t, event.Data.Bids, 1)
	assert.Equal(t, 100.0, event.Data.Bids[0].Price)
}
