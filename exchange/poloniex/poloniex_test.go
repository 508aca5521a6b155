package poloniex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketfeed/book"
)

// TestBookUpdater_SnapshotThenDelta reproduces spec.md §8 scenario 3.
func TestBookUpdater_SnapshotThenDelta(t *testing.T) {
	ob := book.New(0)
	var updater BookUpdater

	seeded, err := updater.Update(ob, BookFrame{
		Action: "snapshot",
		Data: []BookData{{
			Symbol: "BTC_USDT", ID: 50,
			Bids: [][2]string{{"1.00", "10"}, {"0.99", "5"}},
			Asks: [][2]string{{"1.01", "8"}},
		}},
	})
	require.Nil(t, err)
	assert.Nil(t, seeded, "bootstrap snapshot must not emit an event")

	event, err := updater.Update(ob, BookFrame{
		Action: "update",
		Data: []BookData{{
			Symbol: "BTC_USDT", ID: 51,
			Bids: [][2]string{{"1.00", "0"}},
		}},
	})
	require.Nil(t, err)
	require.NotNil(t, event)

	require.Len(t, event.Bids, 1)
	assert.Equal(t, 0.99, event.Bids[0].Price)
	require.Len(t, event.Asks, 1)
	assert.Equal(t, 1.01, event.Asks[0].Price)
}

func TestBookUpdater_GapIsTerminal(t *testing.T) {
	ob := book.New(0)
	var updater BookUpdater
	_, err := updater.Update(ob, BookFrame{Action: "snapshot", Data: []BookData{{Symbol: "BTC_USDT", ID: 50}}})
	require.Nil(t, err)

	_, err = updater.Update(ob, BookFrame{Action: "update", Data: []BookData{{Symbol: "BTC_USDT", ID: 53}}})
	require.NotNil(t, err)
	assert.True(t, err.IsTerminal())
}
