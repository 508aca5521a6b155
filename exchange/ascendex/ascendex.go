// Package ascendex implements the AscendEx public-stream adapter's
// trade channel: {"op":"sub","ch":...} per spec.md §6.
package ascendex

import (
	"fmt"
	"strings"

	"marketfeed/exchange"
	"marketfeed/model"
	"marketfeed/transform"
	"marketfeed/wire"
)

const wsURL = "wss://ascendex.com/0/api/pro/v1/stream"

// MarketTag returns the venue's "BASE/QUOTE" form, e.g. "BTC/USDT".
func MarketTag(instrument model.Instrument) string {
	return strings.ToUpper(instrument.Base) + "/" + strings.ToUpper(instrument.Quote)
}

// Channel returns the trades channel name for a market tag.
func Channel(marketTag string) string {
	return "trades:" + marketTag
}

// SubscribeRequest builds {"op":"sub","ch":...} for a single channel.
func SubscribeRequest(sub model.ExchangeSubscription) interface{} {
	return map[string]interface{}{"op": "sub", "ch": Channel(sub.MarketTag)}
}

// Capabilities describes this venue's session contract.
func Capabilities() exchange.Capabilities {
	return exchange.Capabilities{
		URL:                           wsURL,
		ExpectedResponses:             exchange.DefaultExpectedResponses,
		SubscriptionValidationTimeout: exchange.DefaultSubscriptionValidationTimeout,
	}
}

// SubscriptionResponse is the venue's subscribe ack.
type SubscriptionResponse struct {
	M      string `json:"m"` // "sub" | "error"
	Ch     string `json:"ch"`
	Code   int    `json:"code"`
	Reason string `json:"reason"`
}

// Validate implements validator.Validator.
func (r SubscriptionResponse) Validate() *wire.Error {
	if r.M == "error" {
		return wire.NewSubscribe(r.Reason)
	}
	return nil
}

// TradeFrame is the trades channel's stream frame.
type TradeFrame struct {
	M      string `json:"m"`
	Symbol string `json:"symbol"`
	Data   []struct {
		P string `json:"p"`
		Q string `json:"q"`
		BM bool  `json:"bm"` // true when the buyer is the maker
	} `json:"data"`
}

// NewTradeTransformer builds the stateless trade transformer. AscendEx
// reports whether the buyer was the maker, the same inversion Binance
// uses, so the taker's side is the logical negation of bm.
func NewTradeTransformer(resolver *transform.MarketTagResolver, exchangeID model.ExchangeId) *transform.StatelessTransformer[TradeFrame, model.EventTrade] {
	return &transform.StatelessTransformer[TradeFrame, model.EventTrade]{
		Resolver: resolver,
		TagOf:    func(f TradeFrame) string { return f.Symbol },
		Convert: func(f TradeFrame, _ model.Instrument) (model.EventTrade, bool) {
			if f.M != "trades" || len(f.Data) == 0 {
				return model.EventTrade{}, false
			}
			d := f.Data[0]
			var price, size float64
			scan(d.P, &price)
			scan(d.Q, &size)
			return model.EventTrade{Level: model.Level{Price: price, Size: size}, IsBuy: !d.BM}, true
		},
		Exchange: exchangeID,
	}
}

func scan(s string, out *float64) {
	fmt.Sscanf(s, "%f", out)
}
