// Package binance implements the Binance Spot public-stream adapter: the
// "REST snapshot + buffered WebSocket diff" L2 regime and a stateless
// trade transform, grounded on rotom-data's exchange/binance/{l2,channel,
// market,mod}.rs.
package binance

import (
	"context"
	"fmt"
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
	wsURL          = "wss://stream.binance.com:9443/ws"
	restSnapshotURL = "https://api.binance.com/api/v3/depth"
	tickSize        = 0.00000001
)

// ChannelTag returns the venue's stream suffix for a kind, e.g. "@depth@100ms".
func ChannelTag(kind model.StreamKind) string {
	switch kind {
	case model.L2:
		return "@depth@100ms"
	case model.Trade, model.Trades:
		return "@trade"
	default:
		return ""
	}
}

// MarketTag returns the venue's lowercase concatenated symbol, e.g. "btcusdt".
func MarketTag(instrument model.Instrument) string {
	return strings.ToLower(instrument.Base + instrument.Quote)
}

// SubscribeRequest builds the single aggregate {"method":"SUBSCRIBE",...}
// payload covering every subscription's stream name.
func SubscribeRequest(subs []model.ExchangeSubscription) interface{} {
	streams := make([]string, len(subs))
	for i, s := range subs {
		streams[i] = s.MarketTag + s.ChannelTag
	}
	return map[string]interface{}{
		"method": "SUBSCRIBE",
		"params": streams,
		"id":     1,
	}
}

// Capabilities describes this venue's session contract. Binance
// aggregates every channel into one subscribe call and returns a single
// ack frame, so ExpectedResponses is always 1 regardless of sub count.
func Capabilities() exchange.Capabilities {
	return exchange.Capabilities{
		URL:                           wsURL,
		ExpectedResponses:             func(subs []model.ExchangeSubscription) int { return 1 },
		SubscriptionValidationTimeout: exchange.DefaultSubscriptionValidationTimeout,
	}
}

// SubscriptionResponse is the venue's subscribe ack: {"result":null,"id":1}
// on success, or {"id":..,"error":{"code":..,"msg":..}} on failure.
type SubscriptionResponse struct {
	ID     int    `json:"id"`
	Result *bool  `json:"result"`
	Error  *struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	} `json:"error"`
}

// Validate implements validator.Validator: a null result means success.
func (r SubscriptionResponse) Validate() *wire.Error {
	if r.Error != nil {
		return wire.NewSubscribe(r.Error.Msg)
	}
	return nil
}

// Trade is the raw @trade stream frame.
type Trade struct {
	EventType   string `json:"e"`
	EventTime   int64  `json:"E"`
	Symbol      string `json:"s"`
	Price       string `json:"p"`
	Quantity    string `json:"q"`
	TradeTime   int64  `json:"T"`
	BuyerMaker  bool   `json:"m"`
}

// BookUpdate is the raw @depth stream frame.
type BookUpdate struct {
	EventType     string          `json:"e"`
	EventTime     int64           `json:"E"`
	Symbol        string          `json:"s"`
	FirstUpdateID uint64          `json:"U"`
	LastUpdateID  uint64          `json:"u"`
	Bids          [][2]string     `json:"b"`
	Asks          [][2]string     `json:"a"`
}

// Snapshot is the REST depth-snapshot response.
type Snapshot struct {
	LastUpdateID uint64      `json:"lastUpdateId"`
	Bids         [][2]string `json:"bids"`
	Asks         [][2]string `json:"asks"`
}

func parseLevels(raw [][2]string) []model.Level {
	out := make([]model.Level, 0, len(raw))
	for _, pair := range raw {
		var price, size float64
		fmt.Sscanf(pair[0], "%f", &price)
		fmt.Sscanf(pair[1], "%f", &size)
		out = append(out, model.Level{Price: price, Size: size})
	}
	return out
}

// NewTradeTransformer builds the stateless trade transformer, inverting
// Binance's buyer-is-maker flag into the engine's IsBuy convention
// (spec.md §8 scenario 4).
func NewTradeTransformer(resolver *transform.MarketTagResolver, exchangeID model.ExchangeId) *transform.StatelessTransformer[Trade, model.EventTrade] {
	return &transform.StatelessTransformer[Trade, model.EventTrade]{
		Resolver: resolver,
		TagOf:    func(t Trade) string { return strings.ToLower(t.Symbol) },
		Convert: func(t Trade, _ model.Instrument) (model.EventTrade, bool) {
			var price, size float64
			fmt.Sscanf(t.Price, "%f", &price)
			fmt.Sscanf(t.Quantity, "%f", &size)
			return model.EventTrade{Level: model.Level{Price: price, Size: size}, IsBuy: !t.BuyerMaker}, true
		},
		Exchange: exchangeID,
	}
}

// BookUpdater implements book.Updater[BookUpdate] for the Binance-style
// REST-snapshot-plus-buffered-diff regime.
type BookUpdater struct {
	seq *book.BinanceStyleSequencer
}

// InitBookUpdater fetches the REST depth snapshot and seeds both the book
// and the sequencer boundary from its lastUpdateId, per l2.rs's init.
func InitBookUpdater(ctx context.Context, client *httpclient.Client, instrument model.Instrument) (*book.InstrumentOrderBook[BookUpdate, *BookUpdater], *wire.Error) {
	url := fmt.Sprintf("%s?symbol=%s%s&limit=1000",
		restSnapshotURL, strings.ToUpper(instrument.Base), strings.ToUpper(instrument.Quote))

	var snapshot Snapshot
	if err := client.GetJSON(ctx, url, &snapshot); err != nil {
		return nil, wire.NewHTTP(err)
	}

	entry := book.NewInstrumentOrderBook[BookUpdate, *BookUpdater](instrument, &BookUpdater{seq: book.NewBinanceStyleSequencer(snapshot.LastUpdateID)}, tickSize)
	entry.Book.ApplyDelta(parseLevels(snapshot.Bids), parseLevels(snapshot.Asks), time.Now())
	return entry, nil
}

// Update validates and applies one depth-diff frame, per l2.rs's update.
func (u *BookUpdater) Update(ob *book.OrderBook, update BookUpdate) (*model.EventOrderBook, *wire.Error) {
	accept, err := u.seq.Check(update.Symbol, update.FirstUpdateID, update.LastUpdateID)
	if err != nil {
		return nil, err
	}
	if !accept {
		return nil, nil
	}

	ob.ApplyDelta(parseLevels(update.Bids), parseLevels(update.Asks), time.UnixMilli(update.EventTime))
	snap := ob.Snapshot(0, time.UnixMilli(update.EventTime))
	return &snap, nil
}
