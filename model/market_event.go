package model

import "time"

// MarketEvent wraps any normalized event payload with the venue, the
// instrument it concerns, and both the venue-supplied and locally-received
// timestamps. E is instantiated with EventTrade, []EventTrade,
// EventOrderBook, EventOrderBookSnapshot, ConnectionStatus, or DataKind.
type MarketEvent[E any] struct {
	ExchangeTime time.Time
	ReceivedTime time.Time
	Exchange     ExchangeId
	Instrument   Instrument
	Data         E
}

// NewMarketEvent stamps ReceivedTime at construction, matching the source's
// "received_time is set at normalization" rule.
func NewMarketEvent[E any](exchangeTime time.Time, exchange ExchangeId, instrument Instrument, data E) MarketEvent[E] {
	return MarketEvent[E]{
		ExchangeTime: exchangeTime,
		ReceivedTime: time.Now(),
		Exchange:     exchange,
		Instrument:   instrument,
		Data:         data,
	}
}

// DataKindTag discriminates the DataKind tagged union.
type DataKindTag int

const (
	KindTrade DataKindTag = iota
	KindTrades
	KindOrderBook
	KindOrderBookSnapshot
	KindConnectionStatus
)

// DataKind is a Go rendering of the source's tagged union over
// heterogeneous event payloads, so the dynamic builder can fan mixed
// stream kinds into one MarketEvent[DataKind] channel. Go has no sum
// types, so exactly one of the pointer/slice fields matching Tag is set.
type DataKind struct {
	Tag               DataKindTag
	Trade             *EventTrade
	Trades            []EventTrade
	OrderBook         *EventOrderBook
	OrderBookSnapshot *EventOrderBookSnapshot
	ConnectionStatus  *ConnectionStatus
}

// TradeData returns (trade, true) if this DataKind carries a single trade.
func (d DataKind) TradeData() (EventTrade, bool) {
	if d.Tag == KindTrade && d.Trade != nil {
		return *d.Trade, true
	}
	return EventTrade{}, false
}

// TradesData returns (trades, true) if this DataKind carries a trade batch.
func (d DataKind) TradesData() ([]EventTrade, bool) {
	if d.Tag == KindTrades {
		return d.Trades, true
	}
	return nil, false
}

// OrderBookData returns (book, true) if this DataKind carries a book event.
func (d DataKind) OrderBookData() (EventOrderBook, bool) {
	if d.Tag == KindOrderBook && d.OrderBook != nil {
		return *d.OrderBook, true
	}
	return EventOrderBook{}, false
}

// ToDataKindTrade converts a typed trade event into the dynamic union.
func ToDataKindTrade(e MarketEvent[EventTrade]) MarketEvent[DataKind] {
	t := e.Data
	return MarketEvent[DataKind]{
		ExchangeTime: e.ExchangeTime, ReceivedTime: e.ReceivedTime,
		Exchange: e.Exchange, Instrument: e.Instrument,
		Data: DataKind{Tag: KindTrade, Trade: &t},
	}
}

// ToDataKindTrades converts a typed batched-trade event into the dynamic union.
func ToDataKindTrades(e MarketEvent[[]EventTrade]) MarketEvent[DataKind] {
	return MarketEvent[DataKind]{
		ExchangeTime: e.ExchangeTime, ReceivedTime: e.ReceivedTime,
		Exchange: e.Exchange, Instrument: e.Instrument,
		Data: DataKind{Tag: KindTrades, Trades: e.Data},
	}
}

// ToDataKindOrderBook converts a typed book event into the dynamic union.
func ToDataKindOrderBook(e MarketEvent[EventOrderBook]) MarketEvent[DataKind] {
	b := e.Data
	return MarketEvent[DataKind]{
		ExchangeTime: e.ExchangeTime, ReceivedTime: e.ReceivedTime,
		Exchange: e.Exchange, Instrument: e.Instrument,
		Data: DataKind{Tag: KindOrderBook, OrderBook: &b},
	}
}

// ToDataKindOrderBookSnapshot converts a typed snapshot event into the dynamic union.
func ToDataKindOrderBookSnapshot(e MarketEvent[EventOrderBookSnapshot]) MarketEvent[DataKind] {
	s := e.Data
	return MarketEvent[DataKind]{
		ExchangeTime: e.ExchangeTime, ReceivedTime: e.ReceivedTime,
		Exchange: e.Exchange, Instrument: e.Instrument,
		Data: DataKind{Tag: KindOrderBookSnapshot, OrderBookSnapshot: &s},
	}
}

// ToDataKindConnectionStatus converts a connection-status event into the dynamic union.
func ToDataKindConnectionStatus(e MarketEvent[ConnectionStatus]) MarketEvent[DataKind] {
	c := e.Data
	return MarketEvent[DataKind]{
		ExchangeTime: e.ExchangeTime, ReceivedTime: e.ReceivedTime,
		Exchange: e.Exchange, Instrument: e.Instrument,
		Data: DataKind{Tag: KindConnectionStatus, ConnectionStatus: &c},
	}
}
