// Package poloniex implements the Poloniex Spot public-stream adapter:
// the explicit snapshot/update L2 regime and stateless trade transform,
// grounded on rotom-data's exchange_connector/poloniex/{mod,book}.rs.
package poloniex

import (
	"fmt"
	"strings"
	"time"

	"marketfeed/book"
	"marketfeed/exchange"
	"marketfeed/model"
	"marketfeed/transform"
	"marketfeed/wire"
)

const wsURL = "wss://ws.poloniex.com/ws/public"

// ChannelTag returns the venue's channel name for a kind.
func ChannelTag(kind model.StreamKind) string {
	switch kind {
	case model.L2:
		return "book_lv2"
	case model.Trade, model.Trades:
		return "trades"
	default:
		return ""
	}
}

// MarketTag returns the venue's "BASE_QUOTE" form, e.g. "BTC_USDT".
func MarketTag(instrument model.Instrument) string {
	return strings.ToUpper(instrument.Base) + "_" + strings.ToUpper(instrument.Quote)
}

// SubscribeRequest builds {"event":"subscribe","channel":[...],"symbols":[...]},
// deduplicating channels and symbols across the subscription set.
func SubscribeRequest(subs []model.ExchangeSubscription) interface{} {
	channels := dedup(collect(subs, func(s model.ExchangeSubscription) string { return s.ChannelTag }))
	symbols := dedup(collect(subs, func(s model.ExchangeSubscription) string { return s.MarketTag }))
	return map[string]interface{}{
		"event":   "subscribe",
		"channel": channels,
		"symbols": symbols,
	}
}

func collect(subs []model.ExchangeSubscription, f func(model.ExchangeSubscription) string) []string {
	out := make([]string, len(subs))
	for i, s := range subs {
		out[i] = f(s)
	}
	return out
}

func dedup(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Capabilities describes this venue's session contract. Poloniex returns
// one aggregate {"event":"subscribed",...} ack regardless of how many
// symbols were requested, and requires an application-level {"event":
// "ping"} keepalive every 30s.
func Capabilities() exchange.Capabilities {
	return exchange.Capabilities{
		URL:                           wsURL,
		ExpectedResponses:             func(subs []model.ExchangeSubscription) int { return 1 },
		Ping:                          exchange.PingPayload{Interval: 30 * time.Second, Message: map[string]string{"event": "ping"}},
		SubscriptionValidationTimeout: exchange.DefaultSubscriptionValidationTimeout,
	}
}

// SubscriptionResponse is the venue's subscribe ack, or an error frame
// carrying {"event":"error","message":...}.
type SubscriptionResponse struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}

// Validate implements validator.Validator.
func (r SubscriptionResponse) Validate() *wire.Error {
	if r.Event == "error" {
		return wire.NewSubscribe(r.Message)
	}
	return nil
}

// TradeData is one element of a trades channel's data array.
type TradeData struct {
	Symbol    string `json:"symbol"`
	Quantity  string `json:"quantity"`
	TakerSide string `json:"takerSide"`
	Timestamp int64  `json:"createTime"`
	Price     string `json:"price"`
	ID        string `json:"id"`
}

// TradeFrame is the trades channel's envelope.
type TradeFrame struct {
	Channel string      `json:"channel"`
	Data    []TradeData `json:"data"`
}

// BookData is one element of a book_lv2 channel's data array.
type BookData struct {
	Symbol    string      `json:"symbol"`
	Timestamp int64       `json:"createTime"`
	Asks      [][2]string `json:"asks"`
	Bids      [][2]string `json:"bids"`
	LastID    uint64      `json:"lastId"`
	ID        uint64      `json:"id"`
}

// BookFrame is the book_lv2 channel's envelope; Action distinguishes the
// seeding "snapshot" message from subsequent "update" diffs.
type BookFrame struct {
	Channel string     `json:"channel"`
	Action  string     `json:"action"`
	Data    []BookData `json:"data"`
}

func parseLevels(raw [][2]string) []model.Level {
	out := make([]model.Level, 0, len(raw))
	for _, pair := range raw {
		var price, size float64
		scan(pair[0], &price)
		scan(pair[1], &size)
		out = append(out, model.Level{Price: price, Size: size})
	}
	return out
}

func scan(s string, out *float64) {
	fmt.Sscanf(s, "%f", out)
}

// NewTradeTransformer builds the stateless trade transformer; Poloniex
// tags taker side as the literal string "buy"/"sell", unlike Binance's
// inverted buyer-is-maker flag.
func NewTradeTransformer(resolver *transform.MarketTagResolver, exchangeID model.ExchangeId) *transform.StatelessTransformer[TradeFrame, model.EventTrade] {
	return &transform.StatelessTransformer[TradeFrame, model.EventTrade]{
		Resolver: resolver,
		TagOf: func(f TradeFrame) string {
			if len(f.Data) == 0 {
				return ""
			}
			return f.Data[0].Symbol
		},
		Convert: func(f TradeFrame, _ model.Instrument) (model.EventTrade, bool) {
			if len(f.Data) == 0 {
				return model.EventTrade{}, false
			}
			d := f.Data[0]
			var price, size float64
			scan(d.Price, &price)
			scan(d.Quantity, &size)
			return model.EventTrade{Level: model.Level{Price: price, Size: size}, IsBuy: d.TakerSide == "buy"}, true
		},
		Exchange: exchangeID,
	}
}

// BookUpdater implements book.Updater[BookFrame] for the explicit
// snapshot/update regime: a "snapshot" frame re-seeds both book sides and
// the sequencer boundary; each "update" frame must carry id == prevID+1.
type BookUpdater struct {
	seq book.PoloniexStyleSequencer
}

// Update applies one book_lv2 frame, per book.rs's PoloniexBookData.
func (u *BookUpdater) Update(ob *book.OrderBook, frame BookFrame) (*model.EventOrderBook, *wire.Error) {
	if len(frame.Data) == 0 {
		return nil, nil
	}
	d := frame.Data[0]

	if frame.Action == "snapshot" {
		ob.Reset()
		ob.ApplyDelta(parseLevels(d.Bids), parseLevels(d.Asks), time.UnixMilli(d.Timestamp))
		u.seq.Seed(d.ID)
		return nil, nil
	}

	if err := u.seq.CheckUpdate(d.Symbol, d.ID); err != nil {
		return nil, err
	}
	ob.ApplyDelta(parseLevels(d.Bids), parseLevels(d.Asks), time.UnixMilli(d.Timestamp))
	snap := ob.Snapshot(0, time.UnixMilli(d.Timestamp))
	return &snap, nil
}
