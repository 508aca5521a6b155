// Package htx implements the HTX public-stream adapter's trade channel.
// Every inbound frame, including heartbeats, is gzip-binary; the
// subscribe payload is {"sub":"...","id":"..."}, where sub is a single
// topic string, so one request is built per subscription and several
// topics are never listed in one request.
package htx

import (
	"encoding/json"
	"fmt"
	"strings"

	"marketfeed/exchange"
	"marketfeed/model"
	"marketfeed/transform"
	"marketfeed/wire"
)

const wsURL = "wss://api.huobi.pro/ws"

// MarketTag returns the venue's lowercase concatenated symbol, e.g. "btcusdt".
func MarketTag(instrument model.Instrument) string {
	return strings.ToLower(instrument.Base + instrument.Quote)
}

// ChannelTag returns the venue's topic suffix for a kind;
// SubscribeRequest joins it after the market tag as
// "market.<tag>.<channel>".
func ChannelTag(kind model.StreamKind) string {
	switch kind {
	case model.Trade, model.Trades:
		return "trade.detail"
	default:
		return ""
	}
}

// SubscribeRequest builds one {"sub":"market.<tag>.<channel>","id":"..."}
// payload per subscription; HTX acks each sub call individually.
func SubscribeRequest(sub model.ExchangeSubscription, id string) interface{} {
	return map[string]interface{}{
		"sub": fmt.Sprintf("market.%s.%s", sub.MarketTag, sub.ChannelTag),
		"id":  id,
	}
}

// Capabilities describes this venue's session contract. InflateGzip is
// true because HTX sends every frame, including its own ping heartbeat,
// as gzip-compressed binary.
func Capabilities() exchange.Capabilities {
	return exchange.Capabilities{
		URL:                           wsURL,
		ExpectedResponses:             exchange.DefaultExpectedResponses,
		InflateGzip:                   true,
		SubscriptionValidationTimeout: exchange.DefaultSubscriptionValidationTimeout,
	}
}

// PingFrame is HTX's inbound keepalive, delivered gzip-binary like every
// other frame; InboundControl replies with the matching "pong" directly
// from the session's read path (HTX pings the client, rather than the
// reverse).
type PingFrame struct {
	Ping *int64 `json:"ping"`
}

// InboundControl recognizes a {"ping":N} heartbeat and returns the
// {"pong":N} reply the venue requires in response, wired into
// session.Config.InboundControl so the reply goes out before the payload
// would otherwise fail to decode as a TradeFrame and get skipped as an
// order-book/tag lookup miss.
func InboundControl(payload []byte) (interface{}, bool) {
	var frame PingFrame
	if err := json.Unmarshal(payload, &frame); err != nil || frame.Ping == nil {
		return nil, false
	}
	return map[string]int64{"pong": *frame.Ping}, true
}

// SubscriptionResponse is the venue's subscribe ack.
type SubscriptionResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	ErrCode int    `json:"err-code"`
	ErrMsg  string `json:"err-msg"`
}

// Validate implements validator.Validator.
func (r SubscriptionResponse) Validate() *wire.Error {
	if r.Status != "ok" {
		return wire.NewSubscribe(r.ErrMsg)
	}
	return nil
}

// TradeFrame is the trade.detail channel's stream frame.
type TradeFrame struct {
	Ch   string `json:"ch"`
	Tick struct {
		Data []struct {
			Price     float64 `json:"price"`
			Amount    float64 `json:"amount"`
			Direction string  `json:"direction"`
		} `json:"data"`
	} `json:"tick"`
}

func tagFromChannel(ch string) string {
	parts := strings.Split(ch, ".")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// NewTradeTransformer builds the stateless trade transformer.
func NewTradeTransformer(resolver *transform.MarketTagResolver, exchangeID model.ExchangeId) *transform.StatelessTransformer[TradeFrame, model.EventTrade] {
	return &transform.StatelessTransformer[TradeFrame, model.EventTrade]{
		Resolver: resolver,
		TagOf:    func(f TradeFrame) string { return tagFromChannel(f.Ch) },
		Convert: func(f TradeFrame, _ model.Instrument) (model.EventTrade, bool) {
			if len(f.Tick.Data) == 0 {
				return model.EventTrade{}, false
			}
			d := f.Tick.Data[0]
			return model.EventTrade{Level: model.Level{Price: d.Price, Size: d.Amount}, IsBuy: d.Direction == "buy"}, true
		},
		Exchange: exchangeID,
	}
}
