// Package okx implements the OKX public-stream adapter's trade channel:
// {"op":"subscribe","args":[{"channel":...,"instId":...}]} per spec.md §6.
package okx

import (
	"fmt"
	"strings"

	"marketfeed/exchange"
	"marketfeed/model"
	"marketfeed/transform"
	"marketfeed/wire"
)

const wsURL = "wss://ws.okx.com:8443/ws/v5/public"

// MarketTag returns the venue's "BASE-QUOTE" form, e.g. "BTC-USDT".
func MarketTag(instrument model.Instrument) string {
	return strings.ToUpper(instrument.Base) + "-" + strings.ToUpper(instrument.Quote)
}

// ChannelTag returns the venue's channel name for a kind.
func ChannelTag(kind model.StreamKind) string {
	switch kind {
	case model.Trade, model.Trades:
		return "trades"
	default:
		return ""
	}
}

type argEntry struct {
	Channel string `json:"channel"`
	InstID  string `json:"instId"`
}

// SubscribeRequest builds {"op":"subscribe","args":[{"channel":...,"instId":...},...]},
// one arg entry per subscription.
func SubscribeRequest(subs []model.ExchangeSubscription) interface{} {
	args := make([]argEntry, len(subs))
	for i, s := range subs {
		args[i] = argEntry{Channel: s.ChannelTag, InstID: s.MarketTag}
	}
	return map[string]interface{}{"op": "subscribe", "args": args}
}

// Capabilities describes this venue's session contract: one ack per
// subscribed arg entry.
func Capabilities() exchange.Capabilities {
	return exchange.Capabilities{
		URL:                           wsURL,
		ExpectedResponses:             exchange.DefaultExpectedResponses,
		SubscriptionValidationTimeout: exchange.DefaultSubscriptionValidationTimeout,
	}
}

// SubscriptionResponse is the venue's per-arg subscribe ack, or an
// {"event":"error",...} frame.
type SubscriptionResponse struct {
	Event string `json:"event"`
	Msg   string `json:"msg"`
}

// Validate implements validator.Validator.
func (r SubscriptionResponse) Validate() *wire.Error {
	if r.Event == "error" {
		return wire.NewSubscribe(r.Msg)
	}
	return nil
}

// TradeFrame is the trades channel's stream frame.
type TradeFrame struct {
	Arg  argEntry `json:"arg"`
	Data []struct {
		Px    string `json:"px"`
		Sz    string `json:"sz"`
		Side  string `json:"side"`
	} `json:"data"`
}

// NewTradeTransformer builds the stateless trade transformer.
func NewTradeTransformer(resolver *transform.MarketTagResolver, exchangeID model.ExchangeId) *transform.StatelessTransformer[TradeFrame, model.EventTrade] {
	return &transform.StatelessTransformer[TradeFrame, model.EventTrade]{
		Resolver: resolver,
		TagOf:    func(f TradeFrame) string { return f.Arg.InstID },
		Convert: func(f TradeFrame, _ model.Instrument) (model.EventTrade, bool) {
			if len(f.Data) == 0 {
				return model.EventTrade{}, false
			}
			d := f.Data[0]
			var price, size float64
			scan(d.Px, &price)
			scan(d.Sz, &size)
			return model.EventTrade{Level: model.Level{Price: price, Size: size}, IsBuy: d.Side == "buy"}, true
		},
		Exchange: exchangeID,
	}
}

func scan(s string, out *float64) {
	fmt.Sscanf(s, "%f", out)
}
