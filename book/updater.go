package book

import (
	"marketfeed/model"
	"marketfeed/wire"
)

// Updater applies one venue-shaped update frame U to a live book and
// returns the resulting public book event, mirroring the source's
// OrderBookUpdater trait. Returning (nil, nil) means the frame was
// consumed (e.g. it only primed sequencing state) without producing a
// public event yet.
type Updater[U any] interface {
	Update(ob *OrderBook, update U) (*model.EventOrderBook, *wire.Error)
}

// InstrumentOrderBook pairs one instrument's live book with the stateful
// updater validating its sequence, exactly the unit the book transformer
// keeps one of per subscribed market (spec.md §4.5).
type InstrumentOrderBook[U any, Up Updater[U]] struct {
	Instrument model.Instrument
	Updater    Up
	Book       *OrderBook
}

// NewInstrumentOrderBook wires an already-initialised updater to a fresh
// book for instrument.
func NewInstrumentOrderBook[U any, Up Updater[U]](instrument model.Instrument, updater Up, tickSize float64) *InstrumentOrderBook[U, Up] {
	return &InstrumentOrderBook[U, Up]{
		Instrument: instrument,
		Updater:    updater,
		Book:       New(tickSize),
	}
}
