// Package bitstamp implements the Bitstamp public-stream adapter's trade
// channel: {"event":"bts:subscribe","data":{"channel":...}} per spec.md
// §6. Bitstamp restricts one socket to one instrument.
package bitstamp

import (
	"strings"

	"marketfeed/exchange"
	"marketfeed/model"
	"marketfeed/transform"
	"marketfeed/wire"
)

const wsURL = "wss://ws.bitstamp.net"

// MarketTag returns the venue's lowercase concatenated symbol, e.g. "btcusd".
func MarketTag(instrument model.Instrument) string {
	return strings.ToLower(instrument.Base + instrument.Quote)
}

// ChannelName returns the full live_trades channel name for a market tag.
func ChannelName(marketTag string) string {
	return "live_trades_" + marketTag
}

// SubscribeRequest builds {"event":"bts:subscribe","data":{"channel":...}}
// for a single instrument's trade channel.
func SubscribeRequest(sub model.ExchangeSubscription) interface{} {
	return map[string]interface{}{
		"event": "bts:subscribe",
		"data":  map[string]string{"channel": ChannelName(sub.MarketTag)},
	}
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
	Event   string `json:"event"`
	Channel string `json:"channel"`
}

// Validate implements validator.Validator.
func (r SubscriptionResponse) Validate() *wire.Error {
	if r.Event != "bts:subscription_succeeded" {
		return wire.NewSubscribe("bitstamp rejected subscription to " + r.Channel)
	}
	return nil
}

// TradeFrame is the live_trades channel's stream frame.
type TradeFrame struct {
	Event   string `json:"event"`
	Channel string `json:"channel"`
	Data    struct {
		Price     float64 `json:"price"`
		Amount    float64 `json:"amount"`
		Type      int     `json:"type"` // 0 = buy, 1 = sell
	} `json:"data"`
}

// NewTradeTransformer builds the stateless trade transformer.
func NewTradeTransformer(resolver *transform.MarketTagResolver, exchangeID model.ExchangeId) *transform.StatelessTransformer[TradeFrame, model.EventTrade] {
	return &transform.StatelessTransformer[TradeFrame, model.EventTrade]{
		Resolver: resolver,
		TagOf:    func(f TradeFrame) string { return strings.TrimPrefix(f.Channel, "live_trades_") },
		Convert: func(f TradeFrame, _ model.Instrument) (model.EventTrade, bool) {
			if f.Event != "trade" {
				return model.EventTrade{}, false
			}
			return model.EventTrade{Level: model.Level{Price: f.Data.Price, Size: f.Data.Amount}, IsBuy: f.Data.Type == 0}, true
		},
		Exchange: exchangeID,
	}
}
