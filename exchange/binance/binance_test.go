package binance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketfeed/book"
	"marketfeed/model"
	"marketfeed/transform"
)

// TestBookUpdater_HappyPath reproduces spec.md §8 scenario 1: snapshot
// lastUpdateId=100 seeds bids [(10.00,1.0)], asks [(10.10,2.0)]; update
// [101,103] clears the 10.00 bid and adds a 10.05 ask.
func TestBookUpdater_HappyPath(t *testing.T) {
	ob := book.New(tickSize)
	ob.ApplyDelta(
		[]model.Level{{Price: 10.00, Size: 1.0}},
		[]model.Level{{Price: 10.10, Size: 2.0}},
		time.Now(),
	)
	updater := &BookUpdater{seq: book.NewBinanceStyleSequencer(100)}

	event, err := updater.Update(ob, BookUpdate{
		Symbol: "BTCUSDT", FirstUpdateID: 101, LastUpdateID: 103,
		Bids: [][2]string{{"10.00", "0.0"}},
		Asks: [][2]string{{"10.05", "0.5"}},
	})

	require.Nil(t, err)
	require.NotNil(t, event)
	assert.Empty(t, event.Bids)
	require.Len(t, event.Asks, 2)
	assert.Equal(t, 10.05, event.Asks[0].Price)
	assert.Equal(t, 10.10, event.Asks[1].Price)
}

// TestBookUpdater_SequenceGapIsTerminal reproduces spec.md §8 scenario 2.
func TestBookUpdater_SequenceGapIsTerminal(t *testing.T) {
	ob := book.New(tickSize)
	updater := &BookUpdater{seq: book.NewBinanceStyleSequencer(100)}

	event, err := updater.Update(ob, BookUpdate{
		Symbol: "BTCUSDT", FirstUpdateID: 105, LastUpdateID: 107,
	})

	assert.Nil(t, event)
	require.NotNil(t, err)
	assert.True(t, err.IsTerminal())
}

// TestTradeTransformer_BuyerMakerInversion reproduces spec.md §8
// scenario 4: a buyer-is-maker trade must invert to IsBuy=false.
func TestTradeTransformer_BuyerMakerInversion(t *testing.T) {
	btc := model.NewInstrument("btc", "usdt")
	assert.Equal(t, "btcusdt", MarketTag(btc))

	resolver := transform.NewMarketTagResolver(map[string]model.Instrument{"btcusdt": btc})
	txr := NewTradeTransformer(resolver, model.BinanceSpot)

	event, ok, err := txr.Transform(time.Now(), Trade{Symbol: "BTCUSDT", Price: "100.0", Quantity: "0.5", BuyerMaker: true})
	require.Nil(t, err)
	require.True(t, ok)
	assert.Equal(t, 100.0, event.Data.Level.Price)
	assert.Equal(t, 0.5, event.Data.Level.Size)
	assert.False(t, event.Data.IsBuy)
}
