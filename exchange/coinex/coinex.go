// Package coinex implements the CoinEx public-stream adapter's trade
// channel, subscribed with the deals.subscribe payload per spec.md §6.
package coinex

import (
	"fmt"
	"strings"

	"marketfeed/exchange"
	"marketfeed/model"
	"marketfeed/transform"
	"marketfeed/wire"
)

const wsURL = "wss://socket.coinex.com/"

// MarketTag returns the venue's uppercase concatenated symbol, e.g. "BTCUSDT".
func MarketTag(instrument model.Instrument) string {
	return strings.ToUpper(instrument.Base + instrument.Quote)
}

// SubscribeRequest builds one deals.subscribe payload listing every
// market. The channel tag is not consulted: every subscription is sent
// as a deals (trade) subscription, and no depth.subscribe payload is
// built.
func SubscribeRequest(subs []model.ExchangeSubscription, id int) interface{} {
	markets := make([]string, len(subs))
	for i, s := range subs {
		markets[i] = s.MarketTag
	}
	return map[string]interface{}{
		"method": "deals.subscribe",
		"params": map[string]interface{}{"market_list": markets},
		"id":     id,
	}
}

// Capabilities describes this venue's session contract: one aggregate ack.
func Capabilities() exchange.Capabilities {
	return exchange.Capabilities{
		URL:                           wsURL,
		ExpectedResponses:             func(subs []model.ExchangeSubscription) int { return 1 },
		SubscriptionValidationTimeout: exchange.DefaultSubscriptionValidationTimeout,
	}
}

// SubscriptionResponse is the venue's subscribe ack.
type SubscriptionResponse struct {
	ID    int `json:"id"`
	Error *struct {
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

// TradeFrame is the deals.update push frame.
type TradeFrame struct {
	Method string `json:"method"`
	Params struct {
		Market string `json:"market"`
		Deals  []struct {
			Price string `json:"price"`
			Amount string `json:"amount"`
			Type  string `json:"type"` // "buy" | "sell"
		} `json:"deal_list"`
	} `json:"params"`
}

// NewTradeTransformer builds the stateless trade transformer.
func NewTradeTransformer(resolver *transform.MarketTagResolver, exchangeID model.ExchangeId) *transform.StatelessTransformer[TradeFrame, model.EventTrade] {
	return &transform.StatelessTransformer[TradeFrame, model.EventTrade]{
		Resolver: resolver,
		TagOf:    func(f TradeFrame) string { return f.Params.Market },
		Convert: func(f TradeFrame, _ model.Instrument) (model.EventTrade, bool) {
			if len(f.Params.Deals) == 0 {
				return model.EventTrade{}, false
			}
			d := f.Params.Deals[0]
			var price, size float64
			scan(d.Price, &price)
			scan(d.Amount, &size)
			return model.EventTrade{Level: model.Level{Price: price, Size: size}, IsBuy: d.Type == "buy"}, true
		},
		Exchange: exchangeID,
	}
}

func scan(s string, out *float64) {
	fmt.Sscanf(s, "%f", out)
}
