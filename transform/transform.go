// Package transform converts venue-shaped wire frames into normalized
// MarketEvent values. A StatelessTransformer handles 1:1 frame-to-event
// kinds (trades); BookTransformer handles the stateful L2 book kind,
// delegating sequencing to the book package's per-regime updaters.
package transform

import (
	"time"

	"marketfeed/book"
	"marketfeed/model"
	"marketfeed/wire"
)

// MarketTagResolver maps a venue's wire-level market tag (e.g. "btcusdt",
// "BTC_USDT") back to the normalized Instrument the engine requested it
// under, so multiple markets sharing one socket route correctly.
type MarketTagResolver struct {
	byTag map[string]model.Instrument
}

// NewMarketTagResolver builds a resolver from the set of tag->instrument
// pairs an adapter computed at subscription time.
func NewMarketTagResolver(entries map[string]model.Instrument) *MarketTagResolver {
	resolver := &MarketTagResolver{byTag: make(map[string]model.Instrument, len(entries))}
	for tag, instrument := range entries {
		resolver.byTag[tag] = instrument
	}
	return resolver
}

// Resolve looks up the instrument for a market tag, returning
// OrderBookFindError (reused for any tag-miss, not just book streams) if
// the tag was never subscribed.
func (r *MarketTagResolver) Resolve(tag string) (model.Instrument, *wire.Error) {
	instrument, ok := r.byTag[tag]
	if !ok {
		return model.Instrument{}, wire.NewOrderBookFindError(tag)
	}
	return instrument, nil
}

// StatelessTransform converts a single decoded frame into a MarketEvent
// for stream kinds with no book-like running state (trades, tickers).
type StatelessTransform[F any, E any] func(frame F, instrument model.Instrument) (E, bool)

// StatelessTransformer dispatches each frame through Convert after
// resolving its market tag, discarding frames whose Convert returns false
// (e.g. a non-data control frame sharing the same wire type).
type StatelessTransformer[F any, E any] struct {
	Resolver *MarketTagResolver
	TagOf    func(frame F) string
	Convert  StatelessTransform[F, E]
	Exchange model.ExchangeId
}

// Transform resolves the frame's instrument and converts it, returning
// (event, true) on a produced event, or (zero, false) when the frame
// carried nothing event-worthy.
func (t *StatelessTransformer[F, E]) Transform(exchangeTime time.Time, frame F) (model.MarketEvent[E], bool, *wire.Error) {
	instrument, err := t.Resolver.Resolve(t.TagOf(frame))
	if err != nil {
		var zero model.MarketEvent[E]
		return zero, false, err
	}
	data, ok := t.Convert(frame, instrument)
	if !ok {
		var zero model.MarketEvent[E]
		return zero, false, nil
	}
	return model.NewMarketEvent(exchangeTime, t.Exchange, instrument, data), true, nil
}

// BookTransformer keeps one InstrumentOrderBook per subscribed market tag
// and routes each update frame to its updater, per spec.md §4.5.
type BookTransformer[U any, Up book.Updater[U]] struct {
	Resolver *MarketTagResolver
	TagOf    func(update U) string
	Books    map[string]*book.InstrumentOrderBook[U, Up]
	Exchange model.ExchangeId
}

// NewBookTransformer wires a resolver and a pre-initialised set of
// per-market order books (one InstrumentOrderBook per subscribed tag,
// produced by each adapter's Init step before the session enters its run
// loop).
func NewBookTransformer[U any, Up book.Updater[U]](
	resolver *MarketTagResolver,
	tagOf func(update U) string,
	books map[string]*book.InstrumentOrderBook[U, Up],
	exchange model.ExchangeId,
) *BookTransformer[U, Up] {
	return &BookTransformer[U, Up]{Resolver: resolver, TagOf: tagOf, Books: books, Exchange: exchange}
}

// Transform applies update to the book for its market tag and, if the
// updater produced a public event, wraps it as a MarketEvent.
func (t *BookTransformer[U, Up]) Transform(exchangeTime time.Time, update U) (model.MarketEvent[model.EventOrderBook], bool, *wire.Error) {
	tag := t.TagOf(update)
	entry, ok := t.Books[tag]
	if !ok {
		var zero model.MarketEvent[model.EventOrderBook]
		return zero, false, wire.NewOrderBookFindError(tag)
	}

	event, err := entry.Updater.Update(entry.Book, update)
	if err != nil {
		var zero model.MarketEvent[model.EventOrderBook]
		return zero, false, err
	}
	if event == nil {
		var zero model.MarketEvent[model.EventOrderBook]
		return zero, false, nil
	}
	return model.NewMarketEvent(exchangeTime, t.Exchange, entry.Instrument, *event), true, nil
}
