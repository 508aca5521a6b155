package model

import "time"

// EventOrderBook is the immutable book-state snapshot emitted downstream
// by a book transformer on every accepted update. It is always a deep
// copy of the live book (SPEC_FULL.md §10: "source copies") — callers
// must never receive a reference into a session's mutable OrderBook.
type EventOrderBook struct {
	LastUpdateTime time.Time
	Bids           []Level
	Asks           []Level
}

// Midprice returns the arithmetic mean of the best bid/ask, or false if
// either side is empty. Ported from rotom-data's EventOrderBook::midprice.
func (e EventOrderBook) Midprice() (float64, bool) {
	if len(e.Bids) == 0 || len(e.Asks) == 0 {
		return 0, false
	}
	return (e.Bids[0].Price + e.Asks[0].Price) / 2.0, true
}

// WeightedMidprice weights each side's price by the other side's size,
// biasing toward the side with less resting liquidity. Ported from
// rotom-data's EventOrderBook::weighted_midprice.
func (e EventOrderBook) WeightedMidprice() (float64, bool) {
	if len(e.Bids) == 0 || len(e.Asks) == 0 {
		return 0, false
	}
	bestBid, bestAsk := e.Bids[0], e.Asks[0]
	den := bestBid.Size + bestAsk.Size
	if den == 0 {
		return 0, false
	}
	num := bestBid.Size*bestAsk.Price + bestBid.Price*bestAsk.Size
	return num / den, true
}

// EventOrderBookSnapshot is the lighter book-state payload used by the
// Snapshot stream kind's stateless transformer (no timestamp, unlike the
// book transformer's EventOrderBook). Supplemented from
// rotom-data/src/model/event_book_snapshot.rs — the distilled spec names
// Snapshot as a StreamKind without specifying its event payload shape.
type EventOrderBookSnapshot struct {
	Bids []Level
	Asks []Level
}

// EventTrade normalizes a single trade. IsBuy is true iff the aggressor
// was a buyer; exchanges that report "buyer is maker" must invert the
// boolean at deserialization time so this field means the same thing
// everywhere.
type EventTrade struct {
	Level Level
	IsBuy bool
}

// ConnectionState tags a ConnectionStatus event.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connected
)

// ConnectionStatus is emitted around a reconnect cycle, tagged with the
// session's StreamKind so consumers can react per stream class.
type ConnectionStatus struct {
	State  ConnectionState
	Stream StreamKind
}
