// Package woox implements the WOO X public-stream adapter's trade
// channel: {"id":...,"topic":...,"event":"subscribe"} per spec.md §6.
// One socket is dedicated to exactly one instrument.
package woox

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"marketfeed/exchange"
	"marketfeed/model"
	"marketfeed/transform"
	"marketfeed/wire"
)

const wsURLTemplate = "wss://wss.woo.org/ws/stream/%s"

// MarketTag returns the venue's "SPOT_BASE_QUOTE" form, e.g. "SPOT_BTC_USDT".
func MarketTag(instrument model.Instrument) string {
	return "SPOT_" + strings.ToUpper(instrument.Base) + "_" + strings.ToUpper(instrument.Quote)
}

// URL returns the per-application WebSocket endpoint (the venue keys
// connections by a registered application ID).
func URL(applicationID string) string {
	return fmt.Sprintf(wsURLTemplate, applicationID)
}

// SubscribeRequest builds {"id":...,"topic":...,"event":"subscribe"} for
// a single market's trade channel.
func SubscribeRequest(sub model.ExchangeSubscription) interface{} {
	return map[string]interface{}{
		"id":    uuid.NewString(),
		"topic": sub.MarketTag + "@" + sub.ChannelTag,
		"event": "subscribe",
	}
}

// Capabilities describes this venue's session contract.
func Capabilities(applicationID string) exchange.Capabilities {
	return exchange.Capabilities{
		URL:                           URL(applicationID),
		ExpectedResponses:             exchange.DefaultExpectedResponses,
		Ping:                          exchange.PingPayload{Interval: 10 * time.Second, Message: map[string]string{"event": "ping"}},
		SubscriptionValidationTimeout: exchange.DefaultSubscriptionValidationTimeout,
	}
}

// SubscriptionResponse is the venue's subscribe ack.
type SubscriptionResponse struct {
	ID      string `json:"id"`
	Event   string `json:"event"`
	Success bool   `json:"success"`
	ErrMsg  string `json:"errorMsg"`
}

// Validate implements validator.Validator.
func (r SubscriptionResponse) Validate() *wire.Error {
	if !r.Success {
		return wire.NewSubscribe(r.ErrMsg)
	}
	return nil
}

// TradeFrame is the trade channel's stream frame.
type TradeFrame struct {
	Topic string `json:"topic"`
	Data  struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price"`
		Size   float64 `json:"size"`
		Side   string  `json:"side"`
	} `json:"data"`
}

// NewTradeTransformer builds the stateless trade transformer.
func NewTradeTransformer(resolver *transform.MarketTagResolver, exchangeID model.ExchangeId) *transform.StatelessTransformer[TradeFrame, model.EventTrade] {
	return &transform.StatelessTransformer[TradeFrame, model.EventTrade]{
		Resolver: resolver,
		TagOf:    func(f TradeFrame) string { return f.Data.Symbol },
		Convert: func(f TradeFrame, _ model.Instrument) (model.EventTrade, bool) {
			return model.EventTrade{Level: model.Level{Price: f.Data.Price, Size: f.Data.Size}, IsBuy: f.Data.Side == "BUY"}, true
		},
		Exchange: exchangeID,
	}
}
