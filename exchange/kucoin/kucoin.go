// Package kucoin implements the KuCoin public-stream adapter's trade
// channel. KuCoin requires a bootstrap POST to a token endpoint before
// dialling the returned per-session WebSocket URL, then subscribes with
// {"id":...,"type":"subscribe","topic":...,"response":true} per spec.md §6.
package kucoin

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"marketfeed/exchange"
	"marketfeed/httpclient"
	"marketfeed/model"
	"marketfeed/transform"
	"marketfeed/wire"
)

const bulletPublicURL = "https://api.kucoin.com/api/v1/bullet-public"

// MarketTag returns the venue's "BASE-QUOTE" form, e.g. "BTC-USDT".
func MarketTag(instrument model.Instrument) string {
	return strings.ToUpper(instrument.Base) + "-" + strings.ToUpper(instrument.Quote)
}

// Bullet is the bootstrap-token response used to build the session's
// WebSocket URL and ping interval.
type Bullet struct {
	Data struct {
		Token           string `json:"token"`
		InstanceServers []struct {
			Endpoint     string `json:"endpoint"`
			PingInterval int    `json:"pingInterval"`
		} `json:"instanceServers"`
	} `json:"data"`
}

// FetchBullet performs the bootstrap POST and returns the dial URL plus
// ping interval in milliseconds. Failure here is terminal to session
// start (spec.md §7: Http is terminal to init).
func FetchBullet(ctx context.Context, client *httpclient.Client) (dialURL string, pingIntervalMs int, err *wire.Error) {
	var bullet Bullet
	if httpErr := client.PostJSON(ctx, bulletPublicURL, nil, &bullet); httpErr != nil {
		return "", 0, wire.NewHTTP(httpErr)
	}
	if len(bullet.Data.InstanceServers) == 0 {
		return "", 0, wire.NewHTTP(fmt.Errorf("kucoin bullet response had no instance servers"))
	}
	server := bullet.Data.InstanceServers[0]
	return fmt.Sprintf("%s?token=%s", server.Endpoint, bullet.Data.Token), server.PingInterval, nil
}

// SubscribeRequest builds one {"id":...,"type":"subscribe","topic":...,
// "response":true} payload per subscription; KuCoin expects an
// individual subscribe call per topic rather than one aggregate request.
func SubscribeRequest(sub model.ExchangeSubscription) interface{} {
	return map[string]interface{}{
		"id":             uuid.NewString(),
		"type":           "subscribe",
		"topic":          fmt.Sprintf("/market/%s:%s", sub.ChannelTag, sub.MarketTag),
		"privateChannel": false,
		"response":       true,
	}
}

// Capabilities describes this venue's session contract. URL and ping
// interval come from FetchBullet, called by the caller before the
// session starts, so the static Capabilities here carries only the
// expected-response count and the validation timeout.
func Capabilities() exchange.Capabilities {
	return exchange.Capabilities{
		ExpectedResponses:             exchange.DefaultExpectedResponses,
		SubscriptionValidationTimeout: exchange.DefaultSubscriptionValidationTimeout,
	}
}

// SubscriptionResponse is the venue's per-topic ack.
type SubscriptionResponse struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Validate implements validator.Validator.
func (r SubscriptionResponse) Validate() *wire.Error {
	if r.Type == "error" {
		return wire.NewSubscribe("kucoin rejected subscription " + r.ID)
	}
	return nil
}

// TradeFrame is the match-execution channel's stream frame.
type TradeFrame struct {
	Topic string `json:"topic"`
	Data  struct {
		Symbol string `json:"symbol"`
		Side   string `json:"side"`
		Size   string `json:"size"`
		Price  string `json:"price"`
	} `json:"data"`
}

// NewTradeTransformer builds the stateless trade transformer.
func NewTradeTransformer(resolver *transform.MarketTagResolver, exchangeID model.ExchangeId) *transform.StatelessTransformer[TradeFrame, model.EventTrade] {
	return &transform.StatelessTransformer[TradeFrame, model.EventTrade]{
		Resolver: resolver,
		TagOf:    func(f TradeFrame) string { return f.Data.Symbol },
		Convert: func(f TradeFrame, _ model.Instrument) (model.EventTrade, bool) {
			var price, size float64
			fmt.Sscanf(f.Data.Price, "%f", &price)
			fmt.Sscanf(f.Data.Size, "%f", &size)
			return model.EventTrade{Level: model.Level{Price: price, Size: size}, IsBuy: f.Data.Side == "buy"}, true
		},
		Exchange: exchangeID,
	}
}
