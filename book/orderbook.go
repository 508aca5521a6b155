// Package book implements per-instrument L2 order-book state: the
// price-level storage with its sort/uniqueness invariants, the snapshot
// projection emitted downstream, and the three sequencing regimes adapters
// compose to validate exchange updates (spec.md §4.5).
package book

import (
	"time"

	"marketfeed/model"
)

// OrderBook is per-instrument state owned by exactly one session; no
// cross-task access is ever required (spec.md §5's shared-resource
// policy). Bids are sorted descending by price, asks ascending, both with
// unique prices.
type OrderBook struct {
	Bids           []model.Level
	Asks           []model.Level
	TickSize       float64
	LastUpdateTime time.Time
}

// New constructs an empty book with the given tick size (zero if unknown
// at construction time; Phemex-style init only needs this field).
func New(tickSize float64) *OrderBook {
	return &OrderBook{TickSize: tickSize}
}

// ApplyDelta upserts every level in bids/asks, deleting entries whose size
// is zero, and stamps LastUpdateTime. This is the one delta-application
// rule shared by all three sequencing regimes (spec.md §4.5).
func (b *OrderBook) ApplyDelta(bids, asks []model.Level, now time.Time) {
	for _, lvl := range bids {
		b.Bids = applyLevel(b.Bids, lvl, false)
	}
	for _, lvl := range asks {
		b.Asks = applyLevel(b.Asks, lvl, true)
	}
	b.LastUpdateTime = now
}

// Reset clears both sides, used when a regime re-seeds from a fresh
// snapshot (Poloniex-style "snapshot" action, Phemex-style "snapshot"
// message).
func (b *OrderBook) Reset() {
	b.Bids = b.Bids[:0]
	b.Asks = b.Asks[:0]
}

// applyLevel inserts, amends, or deletes one level in a sorted, unique-
// price slice. ascending selects asks-style ordering; false selects
// bids-style (descending) ordering.
func applyLevel(levels []model.Level, lvl model.Level, ascending bool) []model.Level {
	idx, found := search(levels, lvl.Price, ascending)
	switch {
	case lvl.Size == 0:
		if found {
			levels = append(levels[:idx], levels[idx+1:]...)
		}
	case found:
		levels[idx] = lvl
	default:
		levels = append(levels, model.Level{})
		copy(levels[idx+1:], levels[idx:])
		levels[idx] = lvl
	}
	return levels
}

// search returns the insertion index for price under the given ordering,
// and whether a level at exactly that price already exists.
func search(levels []model.Level, price float64, ascending bool) (int, bool) {
	lo, hi := 0, len(levels)
	for lo < hi {
		mid := (lo + hi) / 2
		p := levels[mid].Price
		var before bool
		if ascending {
			before = p < price
		} else {
			before = p > price
		}
		if before {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, lo < len(levels) && levels[lo].Price == price
}

// BestBid returns the highest bid level, if any.
func (b *OrderBook) BestBid() (model.Level, bool) {
	if len(b.Bids) == 0 {
		return model.Level{}, false
	}
	return b.Bids[0], true
}

// BestAsk returns the lowest ask level, if any.
func (b *OrderBook) BestAsk() (model.Level, bool) {
	if len(b.Asks) == 0 {
		return model.Level{}, false
	}
	return b.Asks[0], true
}

// Crossed reports whether best_bid >= best_ask while both sides are
// non-empty, which must never happen per spec.md §3's cross-book invariant.
func (b *OrderBook) Crossed() bool {
	bid, hasBid := b.BestBid()
	ask, hasAsk := b.BestAsk()
	return hasBid && hasAsk && bid.Price >= ask.Price
}

// Snapshot projects the current top-N levels per side (0 means the full
// book) plus the current time into an immutable EventOrderBook. Always a
// deep copy: callers never see the live book's backing arrays.
func (b *OrderBook) Snapshot(depth int, now time.Time) model.EventOrderBook {
	return model.EventOrderBook{
		LastUpdateTime: now,
		Bids:           topN(b.Bids, depth),
		Asks:           topN(b.Asks, depth),
	}
}

func topN(levels []model.Level, depth int) []model.Level {
	n := len(levels)
	if depth > 0 && depth < n {
		n = depth
	}
	out := make([]model.Level, n)
	copy(out, levels[:n])
	return out
}
