package book

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketfeed/model"
)

func TestApplyDelta_UpsertsAndSorts(t *testing.T) {
	ob := New(0.01)
	now := time.Now()

	ob.ApplyDelta(
		[]model.Level{{Price: 100, Size: 1}, {Price: 102, Size: 2}, {Price: 101, Size: 3}},
		[]model.Level{{Price: 105, Size: 1}, {Price: 103, Size: 2}},
		now,
	)

	require.Len(t, ob.Bids, 3)
	assert.Equal(t, []float64{102, 101, 100}, prices(ob.Bids))
	require.Len(t, ob.Asks, 2)
	assert.Equal(t, []float64{103, 105}, prices(ob.Asks))
}

func TestApplyDelta_ZeroSizeDeletes(t *testing.T) {
	ob := New(0.01)
	now := time.Now()
	ob.ApplyDelta([]model.Level{{Price: 100, Size: 1}}, nil, now)
	ob.ApplyDelta([]model.Level{{Price: 100, Size: 0}}, nil, now)
	assert.Empty(t, ob.Bids)
}

func TestApplyDelta_AmendsExistingPrice(t *testing.T) {
	ob := New(0.01)
	now := time.Now()
	ob.ApplyDelta([]model.Level{{Price: 100, Size: 1}}, nil, now)
	ob.ApplyDelta([]model.Level{{Price: 100, Size: 5}}, nil, now)
	require.Len(t, ob.Bids, 1)
	assert.Equal(t, 5.0, ob.Bids[0].Size)
}

func TestCrossed(t *testing.T) {
	ob := New(0.01)
	now := time.Now()
	ob.ApplyDelta([]model.Level{{Price: 101, Size: 1}}, []model.Level{{Price: 100, Size: 1}}, now)
	assert.True(t, ob.Crossed())

	ob2 := New(0.01)
	ob2.ApplyDelta([]model.Level{{Price: 99, Size: 1}}, []model.Level{{Price: 100, Size: 1}}, now)
	assert.False(t, ob2.Crossed())
}

func TestSnapshot_DeepCopyAndTopN(t *testing.T) {
	ob := New(0.01)
	now := time.Now()
	ob.ApplyDelta(
		[]model.Level{{Price: 100, Size: 1}, {Price: 99, Size: 1}, {Price: 98, Size: 1}},
		nil, now,
	)

	snap := ob.Snapshot(2, now)
	require.Len(t, snap.Bids, 2)
	assert.Equal(t, 100.0, snap.Bids[0].Price)

	snap.Bids[0].Size = 999
	assert.Equal(t, 1.0, ob.Bids[0].Size, "snapshot must not alias the live book")
}

func TestSnapshot_IdempotentOnUnchangedBook(t *testing.T) {
	ob := New(0.01)
	now := time.Now()
	ob.ApplyDelta([]model.Level{{Price: 100, Size: 1}}, []model.Level{{Price: 101, Size: 1}}, now)

	first := ob.Snapshot(0, now)
	second := ob.Snapshot(0, now)
	assert.Equal(t, first.Bids, second.Bids)
	assert.Equal(t, first.Asks, second.Asks)
}

func prices(levels []model.Level) []float64 {
	out := make([]float64, len(levels))
	for i, l := range levels {
		out[i] = l.Price
	}
	return out
}
