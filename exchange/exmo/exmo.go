// Package exmo implements the Exmo public-stream adapter's trade
// channel: {"id":...,"method":"subscribe","topics":[...]}, which the
// venue acks once per topic plus one connection-level ack, per spec.md §6.
package exmo

import (
	"fmt"
	"strings"

	"marketfeed/exchange"
	"marketfeed/model"
	"marketfeed/transform"
	"marketfeed/wire"
)

const wsURL = "wss://ws-api.exmo.com:443/v1/public"

// MarketTag returns the venue's "BASE_QUOTE" form, e.g. "BTC_USDT".
func MarketTag(instrument model.Instrument) string {
	return strings.ToUpper(instrument.Base) + "_" + strings.ToUpper(instrument.Quote)
}

// Topic returns the spot.trades topic name for a market tag.
func Topic(marketTag string) string {
	return "spot/trades:" + marketTag
}

// SubscribeRequest builds {"id":...,"method":"subscribe","topics":[...]}
// for every subscription in one call.
func SubscribeRequest(subs []model.ExchangeSubscription, id int) interface{} {
	topics := make([]string, len(subs))
	for i, s := range subs {
		topics[i] = Topic(s.MarketTag)
	}
	return map[string]interface{}{"id": id, "method": "subscribe", "topics": topics}
}

// Capabilities describes this venue's session contract: one ack per
// topic plus one connection-level ack (spec.md §6's Exmo note).
func Capabilities() exchange.Capabilities {
	return exchange.Capabilities{
		URL:                           wsURL,
		ExpectedResponses:             func(subs []model.ExchangeSubscription) int { return len(subs) + 1 },
		SubscriptionValidationTimeout: exchange.DefaultSubscriptionValidationTimeout,
	}
}

// SubscriptionResponse is the venue's per-topic or connection ack.
type SubscriptionResponse struct {
	ID    int    `json:"id"`
	Event string `json:"event"` // "subscribed" | "info" | "error"
	Code  int    `json:"code"`
	Message string `json:"message"`
}

// Validate implements validator.Validator.
func (r SubscriptionResponse) Validate() *wire.Error {
	if r.Event == "error" {
		return wire.NewSubscribe(r.Message)
	}
	return nil
}

// TradeFrame is the spot/trades topic's push frame.
type TradeFrame struct {
	Topic string `json:"topic"`
	Data  struct {
		Price  string `json:"price"`
		Qty    string `json:"quantity"`
		Type   string `json:"type"` // "buy" | "sell"
	} `json:"data"`
}

// NewTradeTransformer builds the stateless trade transformer.
func NewTradeTransformer(resolver *transform.MarketTagResolver, exchangeID model.ExchangeId) *transform.StatelessTransformer[TradeFrame, model.EventTrade] {
	return &transform.StatelessTransformer[TradeFrame, model.EventTrade]{
		Resolver: resolver,
		TagOf:    func(f TradeFrame) string { return strings.TrimPrefix(f.Topic, "spot/trades:") },
		Convert: func(f TradeFrame, _ model.Instrument) (model.EventTrade, bool) {
			var price, size float64
			scan(f.Data.Price, &price)
			scan(f.Data.Qty, &size)
			return model.EventTrade{Level: model.Level{Price: price, Size: size}, IsBuy: f.Data.Type == "buy"}, true
		},
		Exchange: exchangeID,
	}
}

func scan(s string, out *float64) {
	fmt.Sscanf(s, "%f", out)
}
