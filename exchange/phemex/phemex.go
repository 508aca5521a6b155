// Package phemex implements the Phemex Spot public-stream adapter: the
// monotone-sequence-with-resetting-snapshot L2 regime and a stateless
// trade transform. One socket carries exactly one instrument (spec.md
// §6), grounded on rotom-data's exchange/phemex/{channel,market,l2,mod}.rs.
package phemex

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"marketfeed/book"
	"marketfeed/exchange"
	"marketfeed/httpclient"
	"marketfeed/model"
	"marketfeed/transform"
	"marketfeed/wire"
)

const (
	wsURL            = "wss://ws.phemex.com"
	tickerInfoURL    = "https://api.phemex.com/public/products"
	orderBookChannel = "orderbook.subscribe"
)

// MarketTag returns the venue's "sBASEQUOTE" form, e.g. "sBTCUSDT".
func MarketTag(instrument model.Instrument) string {
	return "s" + strings.ToUpper(instrument.Base) + strings.ToUpper(instrument.Quote)
}

// SubscribeRequest builds {"id":n,"method":"orderbook.subscribe","params":[...]}.
// Phemex allows exactly one channel per connection, so every subscription
// passed in must share a channel tag.
func SubscribeRequest(subs []model.ExchangeSubscription) interface{} {
	markets := make([]string, len(subs))
	for i, s := range subs {
		markets[i] = s.MarketTag
	}
	return map[string]interface{}{
		"id":     rand.Uint64(),
		"method": orderBookChannel,
		"params": markets,
	}
}

// Capabilities describes this venue's session contract: one ack per
// connection regardless of how many markets the subscribe call lists.
func Capabilities() exchange.Capabilities {
	return exchange.Capabilities{
		URL:                           wsURL,
		ExpectedResponses:             func(subs []model.ExchangeSubscription) int { return 1 },
		SubscriptionValidationTimeout: exchange.DefaultSubscriptionValidationTimeout,
	}
}

// SubscriptionResponse is the venue's subscribe ack.
type SubscriptionResponse struct {
	ID     uint64 `json:"id"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Validate implements validator.Validator.
func (r SubscriptionResponse) Validate() *wire.Error {
	if r.Error != nil {
		return wire.NewSubscribe(r.Error.Message)
	}
	return nil
}

// TickerInfo is the /public/products response used to resolve tick size.
type TickerInfo struct {
	Data struct {
		Products []struct {
			Symbol   string   `json:"symbol"`
			TickSize *float64 `json:"tickSize"`
		} `json:"products"`
	} `json:"data"`
}

// BookSide is the raw [price, size] levels for one side of the book,
// decoded as plain JSON numbers.
type BookSide struct {
	Bids [][2]float64 `json:"bids"`
	Asks [][2]float64 `json:"asks"`
}

// OrderBookUpdate is the raw orderbook.subscribe stream frame.
type OrderBookUpdate struct {
	Symbol      string   `json:"symbol"`
	Type        string   `json:"type"` // "snapshot" | "incremental"
	Sequence    uint64   `json:"sequence"`
	Timestamp   int64    `json:"timestamp"`
	Book        BookSide `json:"book"`
}

// toLevels converts raw [price, size] pairs, snapping each price down to
// the book's tick size: Phemex's REST-reported tick size does not always
// evenly divide the prices its stream reports, and naive float rounding
// drifts over many updates, so book.Quantize's decimal arithmetic is used
// instead.
func toLevels(raw [][2]float64, tickSize float64) []model.Level {
	out := make([]model.Level, len(raw))
	for i, pair := range raw {
		out[i] = model.Level{Price: book.Quantize(pair[0], tickSize), Size: pair[1]}
	}
	return out
}

// BookUpdater implements book.Updater[OrderBookUpdate] for the
// monotone-sequence-with-resetting-snapshot regime.
type BookUpdater struct {
	seq book.PhemexStyleSequencer
}

// InitBookUpdater fetches tick-size metadata via REST; init fails the
// session if the symbol's tick size cannot be resolved (spec.md §7:
// TickSizeError is terminal to init).
func InitBookUpdater(ctx context.Context, client *httpclient.Client, instrument model.Instrument) (*book.InstrumentOrderBook[OrderBookUpdate, *BookUpdater], *wire.Error) {
	var info TickerInfo
	if err := client.GetJSON(ctx, tickerInfoURL, &info); err != nil {
		return nil, wire.NewHTTP(err)
	}

	tag := MarketTag(instrument)
	for _, p := range info.Data.Products {
		if p.Symbol == tag && p.TickSize != nil {
			return book.NewInstrumentOrderBook[OrderBookUpdate, *BookUpdater](instrument, &BookUpdater{}, *p.TickSize), nil
		}
	}
	return nil, wire.NewTickSizeError(instrument.Base, instrument.Quote, model.PhemexSpot)
}

// Update applies one orderbook frame, resetting on "snapshot" and
// validating strict sequence growth on "incremental", per l2.rs.
func (u *BookUpdater) Update(ob *book.OrderBook, update OrderBookUpdate) (*model.EventOrderBook, *wire.Error) {
	now := time.UnixMilli(update.Timestamp)

	if update.Type == "snapshot" {
		ob.Reset()
		ob.ApplyDelta(toLevels(update.Book.Bids, ob.TickSize), toLevels(update.Book.Asks, ob.TickSize), now)
		u.seq.AcceptSnapshot(update.Symbol, update.Sequence)
	} else {
		if err := u.seq.AcceptIncremental(update.Symbol, update.Sequence); err != nil {
			return nil, err
		}
		ob.ApplyDelta(toLevels(update.Book.Bids, ob.TickSize), toLevels(update.Book.Asks, ob.TickSize), now)
	}

	snap := ob.Snapshot(0, now)
	return &snap, nil
}

// TradeUpdate is the raw @trade stream frame.
type TradeUpdate struct {
	Symbol string       `json:"symbol"`
	Trades [][4]float64 `json:"trades"` // [timestamp, side(1=buy), price, size] per venue docs
}

// NewTradeTransformer builds the stateless trade transformer.
func NewTradeTransformer(resolver *transform.MarketTagResolver, exchangeID model.ExchangeId) *transform.StatelessTransformer[TradeUpdate, model.EventTrade] {
	return &transform.StatelessTransformer[TradeUpdate, model.EventTrade]{
		Resolver: resolver,
		TagOf:    func(u TradeUpdate) string { return u.Symbol },
		Convert: func(u TradeUpdate, _ model.Instrument) (model.EventTrade, bool) {
			if len(u.Trades) == 0 {
				return model.EventTrade{}, false
			}
			t := u.Trades[0]
			return model.EventTrade{Level: model.Level{Price: t[2], Size: t[3]}, IsBuy: t[1] == 1}, true
		},
		Exchange: exchangeID,
	}
}
