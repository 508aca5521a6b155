// Command marketfeed-demo wires every adapter into the session and
// stream-builder layers and prints normalized events to stdout. It is a
// demonstration harness over the ingestion engine, not a production
// service: persistence, execution, and the rest of the teacher's trading
// stack live outside this module's scope.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"marketfeed/book"
	"marketfeed/config"
	"marketfeed/exchange"
	"marketfeed/exchange/ascendex"
	"marketfeed/exchange/binance"
	"marketfeed/exchange/bitstamp"
	"marketfeed/exchange/coinex"
	"marketfeed/exchange/exmo"
	"marketfeed/exchange/htx"
	"marketfeed/exchange/kucoin"
	"marketfeed/exchange/okx"
	"marketfeed/exchange/phemex"
	"marketfeed/exchange/poloniex"
	"marketfeed/exchange/woox"
	"marketfeed/httpclient"
	"marketfeed/model"
	"marketfeed/session"
	"marketfeed/streams"
	"marketfeed/transform"
	"marketfeed/wire"
)

func main() {
	// Load environment variables from .env if present (WOOX_APP_ID is the
	// only credential this demo needs; the ingestion core itself reads no
	// env vars).
	_ = godotenv.Load()

	cfg, err := config.Load("config.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config.json: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)
	log.Info().Msg("starting marketfeed-demo")

	go serveMetrics(log)

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info().Msg("shutdown signal received")
		cancel()
	}()

	instrument := model.NewInstrument("btc", "usdt")
	client := httpclient.New(cfg.HTTPTimeout())
	dial := session.DefaultDialer(10 * time.Second)

	tradeStreams, buildErr := streams.Build[model.EventTrade](ctx, tradeStarters(cfg, instrument, dial, log))
	if buildErr != nil {
		log.Fatal().Err(buildErr).Msg("failed to start trade sessions")
	}

	bookStreams, buildErr := streams.Build[model.EventOrderBook](ctx, bookStarters(cfg, instrument, client, dial, log))
	if buildErr != nil {
		log.Fatal().Err(buildErr).Msg("failed to start order book sessions")
	}

	go printTrades(tradeStreams.JoinMap(ctx))
	go printBooks(bookStreams.JoinMap(ctx))

	<-ctx.Done()
	log.Info().Msg("marketfeed-demo stopped")
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		Level(lvl).With().Timestamp().Logger()
}

func serveMetrics(log zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(":9090", mux); err != nil {
		log.Warn().Err(err).Msg("metrics server stopped")
	}
}

// exchangePing builds a Ping payload from a venue-reported interval in
// milliseconds, falling back to no ping task when the venue reports none.
func exchangePing(intervalMs int, message interface{}) exchange.PingPayload {
	if intervalMs <= 0 {
		return exchange.PingPayload{}
	}
	return exchange.PingPayload{Interval: time.Duration(intervalMs) * time.Millisecond, Message: message}
}

// enabled reports whether exchangeID should be started, honoring
// cfg.EnabledExchanges (empty means every known exchange).
func enabled(cfg *config.Config, exchangeID model.ExchangeId) bool {
	if len(cfg.EnabledExchanges) == 0 {
		return true
	}
	for _, name := range cfg.EnabledExchanges {
		if strings.EqualFold(name, exchangeID.String()) {
			return true
		}
	}
	return false
}

func printTrades(pairs <-chan streams.Pair[model.EventTrade]) {
	for pair := range pairs {
		t := pair.Event.Data
		fmt.Printf("[trade] %-12s %-8s price=%.8f size=%.8f buy=%v\n",
			pair.Exchange.String(), pair.Event.Instrument.String(), t.Level.Price, t.Level.Size, t.IsBuy)
	}
}

func printBooks(pairs <-chan streams.Pair[model.EventOrderBook]) {
	for pair := range pairs {
		b := pair.Event.Data
		var bestBid, bestAsk model.Level
		if len(b.Bids) > 0 {
			bestBid = b.Bids[0]
		}
		if len(b.Asks) > 0 {
			bestAsk = b.Asks[0]
		}
		fmt.Printf("[book]  %-12s %-8s bid=%.8f@%.8f ask=%.8f@%.8f\n",
			pair.Exchange.String(), pair.Event.Instrument.String(),
			bestBid.Price, bestBid.Size, bestAsk.Price, bestAsk.Size)
	}
}

// tradeStarters builds one Starter per enabled exchange's trade channel.
// Each closure owns its own subscription plumbing; only EventTrade
// crosses the Streams[E] boundary, so heterogeneous Ack/Frame types per
// venue never need to unify (see streams.Starter's doc comment).
func tradeStarters(cfg *config.Config, instrument model.Instrument, dial session.Dialer, log zerolog.Logger) map[model.ExchangeId]streams.Starter[model.EventTrade] {
	starters := map[model.ExchangeId]streams.Starter[model.EventTrade]{}

	if enabled(cfg, model.BinanceSpot) {
		starters[model.BinanceSpot] = func(ctx context.Context) (<-chan session.Output[model.EventTrade], *wire.Error) {
			tag := binance.MarketTag(instrument)
			sub := model.ExchangeSubscription{Exchange: model.BinanceSpot, MarketTag: tag, ChannelTag: binance.ChannelTag(model.Trade), Instrument: instrument}
			subs := []model.ExchangeSubscription{sub}
			resolver := transform.NewMarketTagResolver(map[string]model.Instrument{tag: instrument})
			caps := binance.Capabilities()
			scfg := session.Config[binance.SubscriptionResponse, binance.Trade, model.EventTrade]{
				Exchange: model.BinanceSpot, Stream: model.Trade,
				URL:                  caps.URL,
				SubscriptionRequests: []interface{}{binance.SubscribeRequest(subs)},
				ExpectedResponses:    caps.ExpectedResponses(subs),
				ValidationTimeout:    caps.SubscriptionValidationTimeout,
				InflateGzip:          caps.InflateGzip,
				Ping:                 caps.Ping,
				Transformer:          binance.NewTradeTransformer(resolver, model.BinanceSpot),
				BufferSize:           cfg.EventBufferSizeOrDefault(),
				BackoffBase:          cfg.Backoff.Base(),
				BackoffCap:           cfg.Backoff.Cap(),
			}
			return session.New(scfg, dial, log).Run(ctx)
		}
	}

	if enabled(cfg, model.PoloniexSpot) {
		starters[model.PoloniexSpot] = func(ctx context.Context) (<-chan session.Output[model.EventTrade], *wire.Error) {
			tag := poloniex.MarketTag(instrument)
			sub := model.ExchangeSubscription{Exchange: model.PoloniexSpot, MarketTag: tag, ChannelTag: poloniex.ChannelTag(model.Trade), Instrument: instrument}
			subs := []model.ExchangeSubscription{sub}
			resolver := transform.NewMarketTagResolver(map[string]model.Instrument{tag: instrument})
			caps := poloniex.Capabilities()
			scfg := session.Config[poloniex.SubscriptionResponse, poloniex.TradeFrame, model.EventTrade]{
				Exchange: model.PoloniexSpot, Stream: model.Trade,
				URL:                  caps.URL,
				SubscriptionRequests: []interface{}{poloniex.SubscribeRequest(subs)},
				ExpectedResponses:    caps.ExpectedResponses(subs),
				ValidationTimeout:    caps.SubscriptionValidationTimeout,
				Ping:                 caps.Ping,
				Transformer:          poloniex.NewTradeTransformer(resolver, model.PoloniexSpot),
				BufferSize:           cfg.EventBufferSizeOrDefault(),
				BackoffBase:          cfg.Backoff.Base(),
				BackoffCap:           cfg.Backoff.Cap(),
			}
			return session.New(scfg, dial, log).Run(ctx)
		}
	}

	if enabled(cfg, model.OkxSpot) {
		starters[model.OkxSpot] = func(ctx context.Context) (<-chan session.Output[model.EventTrade], *wire.Error) {
			tag := okx.MarketTag(instrument)
			sub := model.ExchangeSubscription{Exchange: model.OkxSpot, MarketTag: tag, ChannelTag: okx.ChannelTag(model.Trade), Instrument: instrument}
			subs := []model.ExchangeSubscription{sub}
			resolver := transform.NewMarketTagResolver(map[string]model.Instrument{tag: instrument})
			caps := okx.Capabilities()
			scfg := session.Config[okx.SubscriptionResponse, okx.TradeFrame, model.EventTrade]{
				Exchange: model.OkxSpot, Stream: model.Trade,
				URL:                  caps.URL,
				SubscriptionRequests: []interface{}{okx.SubscribeRequest(subs)},
				ExpectedResponses:    caps.ExpectedResponses(subs),
				ValidationTimeout:    caps.SubscriptionValidationTimeout,
				Transformer:          okx.NewTradeTransformer(resolver, model.OkxSpot),
				BufferSize:           cfg.EventBufferSizeOrDefault(),
				BackoffBase:          cfg.Backoff.Base(),
				BackoffCap:           cfg.Backoff.Cap(),
			}
			return session.New(scfg, dial, log).Run(ctx)
		}
	}

	if enabled(cfg, model.KuCoinSpot) {
		starters[model.KuCoinSpot] = func(ctx context.Context) (<-chan session.Output[model.EventTrade], *wire.Error) {
			tag := kucoin.MarketTag(instrument)
			sub := model.ExchangeSubscription{Exchange: model.KuCoinSpot, MarketTag: tag, ChannelTag: "match", Instrument: instrument}
			resolver := transform.NewMarketTagResolver(map[string]model.Instrument{tag: instrument})

			client := httpclient.New(cfg.HTTPTimeout())
			dialURL, pingIntervalMs, err := kucoin.FetchBullet(ctx, client)
			if err != nil {
				return nil, err
			}

			caps := kucoin.Capabilities()
			scfg := session.Config[kucoin.SubscriptionResponse, kucoin.TradeFrame, model.EventTrade]{
				Exchange: model.KuCoinSpot, Stream: model.Trade,
				URL:                  dialURL,
				SubscriptionRequests: []interface{}{kucoin.SubscribeRequest(sub)},
				ExpectedResponses:    caps.ExpectedResponses([]model.ExchangeSubscription{sub}),
				ValidationTimeout:    caps.SubscriptionValidationTimeout,
				Ping:                 exchangePing(pingIntervalMs, map[string]string{"id": "marketfeed", "type": "ping"}),
				Transformer:          kucoin.NewTradeTransformer(resolver, model.KuCoinSpot),
				BufferSize:           cfg.EventBufferSizeOrDefault(),
				BackoffBase:          cfg.Backoff.Base(),
				BackoffCap:           cfg.Backoff.Cap(),
			}
			return session.New(scfg, dial, log).Run(ctx)
		}
	}

	if enabled(cfg, model.HtxSpot) {
		starters[model.HtxSpot] = func(ctx context.Context) (<-chan session.Output[model.EventTrade], *wire.Error) {
			tag := htx.MarketTag(instrument)
			sub := model.ExchangeSubscription{Exchange: model.HtxSpot, MarketTag: tag, ChannelTag: htx.ChannelTag(model.Trade), Instrument: instrument}
			resolver := transform.NewMarketTagResolver(map[string]model.Instrument{tag: instrument})
			caps := htx.Capabilities()
			scfg := session.Config[htx.SubscriptionResponse, htx.TradeFrame, model.EventTrade]{
				Exchange: model.HtxSpot, Stream: model.Trade,
				URL:                  caps.URL,
				SubscriptionRequests: []interface{}{htx.SubscribeRequest(sub, "marketfeed-1")},
				ExpectedResponses:    caps.ExpectedResponses([]model.ExchangeSubscription{sub}),
				ValidationTimeout:    caps.SubscriptionValidationTimeout,
				InflateGzip:          caps.InflateGzip,
				InboundControl:       htx.InboundControl,
				Transformer:          htx.NewTradeTransformer(resolver, model.HtxSpot),
				BufferSize:           cfg.EventBufferSizeOrDefault(),
				BackoffBase:          cfg.Backoff.Base(),
				BackoffCap:           cfg.Backoff.Cap(),
			}
			return session.New(scfg, dial, log).Run(ctx)
		}
	}

	if enabled(cfg, model.WooxSpot) {
		appID := os.Getenv("WOOX_APP_ID")
		if appID == "" {
			appID = "_"
		}
		starters[model.WooxSpot] = func(ctx context.Context) (<-chan session.Output[model.EventTrade], *wire.Error) {
			tag := woox.MarketTag(instrument)
			sub := model.ExchangeSubscription{Exchange: model.WooxSpot, MarketTag: tag, ChannelTag: "trade", Instrument: instrument}
			resolver := transform.NewMarketTagResolver(map[string]model.Instrument{tag: instrument})
			caps := woox.Capabilities(appID)
			scfg := session.Config[woox.SubscriptionResponse, woox.TradeFrame, model.EventTrade]{
				Exchange: model.WooxSpot, Stream: model.Trade,
				URL:                  caps.URL,
				SubscriptionRequests: []interface{}{woox.SubscribeRequest(sub)},
				ExpectedResponses:    caps.ExpectedResponses([]model.ExchangeSubscription{sub}),
				ValidationTimeout:    caps.SubscriptionValidationTimeout,
				Ping:                 caps.Ping,
				Transformer:          woox.NewTradeTransformer(resolver, model.WooxSpot),
				BufferSize:           cfg.EventBufferSizeOrDefault(),
				BackoffBase:          cfg.Backoff.Base(),
				BackoffCap:           cfg.Backoff.Cap(),
			}
			return session.New(scfg, dial, log).Run(ctx)
		}
	}

	if enabled(cfg, model.BitstampSpot) {
		starters[model.BitstampSpot] = func(ctx context.Context) (<-chan session.Output[model.EventTrade], *wire.Error) {
			tag := bitstamp.MarketTag(instrument)
			sub := model.ExchangeSubscription{Exchange: model.BitstampSpot, MarketTag: tag, ChannelTag: "live_trades", Instrument: instrument}
			resolver := transform.NewMarketTagResolver(map[string]model.Instrument{tag: instrument})
			caps := bitstamp.Capabilities()
			scfg := session.Config[bitstamp.SubscriptionResponse, bitstamp.TradeFrame, model.EventTrade]{
				Exchange: model.BitstampSpot, Stream: model.Trade,
				URL:                  caps.URL,
				SubscriptionRequests: []interface{}{bitstamp.SubscribeRequest(sub)},
				ExpectedResponses:    caps.ExpectedResponses([]model.ExchangeSubscription{sub}),
				ValidationTimeout:    caps.SubscriptionValidationTimeout,
				Transformer:          bitstamp.NewTradeTransformer(resolver, model.BitstampSpot),
				BufferSize:           cfg.EventBufferSizeOrDefault(),
				BackoffBase:          cfg.Backoff.Base(),
				BackoffCap:           cfg.Backoff.Cap(),
			}
			return session.New(scfg, dial, log).Run(ctx)
		}
	}

	if enabled(cfg, model.CoinExSpot) {
		starters[model.CoinExSpot] = func(ctx context.Context) (<-chan session.Output[model.EventTrade], *wire.Error) {
			tag := coinex.MarketTag(instrument)
			sub := model.ExchangeSubscription{Exchange: model.CoinExSpot, MarketTag: tag, ChannelTag: "deals", Instrument: instrument}
			subs := []model.ExchangeSubscription{sub}
			resolver := transform.NewMarketTagResolver(map[string]model.Instrument{tag: instrument})
			caps := coinex.Capabilities()
			scfg := session.Config[coinex.SubscriptionResponse, coinex.TradeFrame, model.EventTrade]{
				Exchange: model.CoinExSpot, Stream: model.Trade,
				URL:                  caps.URL,
				SubscriptionRequests: []interface{}{coinex.SubscribeRequest(subs, 1)},
				ExpectedResponses:    caps.ExpectedResponses(subs),
				ValidationTimeout:    caps.SubscriptionValidationTimeout,
				Transformer:          coinex.NewTradeTransformer(resolver, model.CoinExSpot),
				BufferSize:           cfg.EventBufferSizeOrDefault(),
				BackoffBase:          cfg.Backoff.Base(),
				BackoffCap:           cfg.Backoff.Cap(),
			}
			return session.New(scfg, dial, log).Run(ctx)
		}
	}

	if enabled(cfg, model.ExmoSpot) {
		starters[model.ExmoSpot] = func(ctx context.Context) (<-chan session.Output[model.EventTrade], *wire.Error) {
			tag := exmo.MarketTag(instrument)
			sub := model.ExchangeSubscription{Exchange: model.ExmoSpot, MarketTag: tag, ChannelTag: "trades", Instrument: instrument}
			subs := []model.ExchangeSubscription{sub}
			resolver := transform.NewMarketTagResolver(map[string]model.Instrument{tag: instrument})
			caps := exmo.Capabilities()
			scfg := session.Config[exmo.SubscriptionResponse, exmo.TradeFrame, model.EventTrade]{
				Exchange: model.ExmoSpot, Stream: model.Trade,
				URL:                  caps.URL,
				SubscriptionRequests: []interface{}{exmo.SubscribeRequest(subs, 1)},
				ExpectedResponses:    caps.ExpectedResponses(subs),
				ValidationTimeout:    caps.SubscriptionValidationTimeout,
				Transformer:          exmo.NewTradeTransformer(resolver, model.ExmoSpot),
				BufferSize:           cfg.EventBufferSizeOrDefault(),
				BackoffBase:          cfg.Backoff.Base(),
				BackoffCap:           cfg.Backoff.Cap(),
			}
			return session.New(scfg, dial, log).Run(ctx)
		}
	}

	if enabled(cfg, model.AscendExSpot) {
		starters[model.AscendExSpot] = func(ctx context.Context) (<-chan session.Output[model.EventTrade], *wire.Error) {
			tag := ascendex.MarketTag(instrument)
			sub := model.ExchangeSubscription{Exchange: model.AscendExSpot, MarketTag: tag, ChannelTag: "trades", Instrument: instrument}
			resolver := transform.NewMarketTagResolver(map[string]model.Instrument{tag: instrument})
			caps := ascendex.Capabilities()
			scfg := session.Config[ascendex.SubscriptionResponse, ascendex.TradeFrame, model.EventTrade]{
				Exchange: model.AscendExSpot, Stream: model.Trade,
				URL:                  caps.URL,
				SubscriptionRequests: []interface{}{ascendex.SubscribeRequest(sub)},
				ExpectedResponses:    caps.ExpectedResponses([]model.ExchangeSubscription{sub}),
				ValidationTimeout:    caps.SubscriptionValidationTimeout,
				Transformer:          ascendex.NewTradeTransformer(resolver, model.AscendExSpot),
				BufferSize:           cfg.EventBufferSizeOrDefault(),
				BackoffBase:          cfg.Backoff.Base(),
				BackoffCap:           cfg.Backoff.Cap(),
			}
			return session.New(scfg, dial, log).Run(ctx)
		}
	}

	return starters
}

// bookStarters builds one Starter per enabled book-capable exchange.
func bookStarters(cfg *config.Config, instrument model.Instrument, client *httpclient.Client, dial session.Dialer, log zerolog.Logger) map[model.ExchangeId]streams.Starter[model.EventOrderBook] {
	starters := map[model.ExchangeId]streams.Starter[model.EventOrderBook]{}

	if enabled(cfg, model.BinanceSpot) {
		starters[model.BinanceSpot] = func(ctx context.Context) (<-chan session.Output[model.EventOrderBook], *wire.Error) {
			tag := binance.MarketTag(instrument)
			entry, err := binance.InitBookUpdater(ctx, client, instrument)
			if err != nil {
				return nil, err
			}
			sub := model.ExchangeSubscription{Exchange: model.BinanceSpot, MarketTag: tag, ChannelTag: binance.ChannelTag(model.L2), Instrument: instrument}
			resolver := transform.NewMarketTagResolver(map[string]model.Instrument{tag: instrument})
			books := map[string]*book.InstrumentOrderBook[binance.BookUpdate, *binance.BookUpdater]{tag: entry}
			bt := transform.NewBookTransformer[binance.BookUpdate, *binance.BookUpdater](
				resolver, func(u binance.BookUpdate) string { return strings.ToLower(u.Symbol) }, books, model.BinanceSpot)
			caps := binance.Capabilities()
			scfg := session.Config[binance.SubscriptionResponse, binance.BookUpdate, model.EventOrderBook]{
				Exchange: model.BinanceSpot, Stream: model.L2,
				URL:                  caps.URL,
				SubscriptionRequests: []interface{}{binance.SubscribeRequest([]model.ExchangeSubscription{sub})},
				ExpectedResponses:    caps.ExpectedResponses([]model.ExchangeSubscription{sub}),
				ValidationTimeout:    caps.SubscriptionValidationTimeout,
				Ping:                 caps.Ping,
				Transformer:          bt,
				BufferSize:           cfg.EventBufferSizeOrDefault(),
				BackoffBase:          cfg.Backoff.Base(),
				BackoffCap:           cfg.Backoff.Cap(),
			}
			return session.New(scfg, dial, log).Run(ctx)
		}
	}

	if enabled(cfg, model.PoloniexSpot) {
		starters[model.PoloniexSpot] = func(ctx context.Context) (<-chan session.Output[model.EventOrderBook], *wire.Error) {
			tag := poloniex.MarketTag(instrument)
			// Poloniex's book_lv2 stream carries no separate tick-size
			// metadata; the venue's own prices are already exact decimals
			// at the precision it publishes.
			entry := book.NewInstrumentOrderBook[poloniex.BookFrame, *poloniex.BookUpdater](instrument, &poloniex.BookUpdater{}, 0)
			sub := model.ExchangeSubscription{Exchange: model.PoloniexSpot, MarketTag: tag, ChannelTag: poloniex.ChannelTag(model.L2), Instrument: instrument}
			subs := []model.ExchangeSubscription{sub}
			resolver := transform.NewMarketTagResolver(map[string]model.Instrument{tag: instrument})
			books := map[string]*book.InstrumentOrderBook[poloniex.BookFrame, *poloniex.BookUpdater]{tag: entry}
			bt := transform.NewBookTransformer[poloniex.BookFrame, *poloniex.BookUpdater](
				resolver, func(f poloniex.BookFrame) string {
					if len(f.Data) == 0 {
						return ""
					}
					return f.Data[0].Symbol
				}, books, model.PoloniexSpot)
			caps := poloniex.Capabilities()
			scfg := session.Config[poloniex.SubscriptionResponse, poloniex.BookFrame, model.EventOrderBook]{
				Exchange: model.PoloniexSpot, Stream: model.L2,
				URL:                  caps.URL,
				SubscriptionRequests: []interface{}{poloniex.SubscribeRequest(subs)},
				ExpectedResponses:    caps.ExpectedResponses(subs),
				ValidationTimeout:    caps.SubscriptionValidationTimeout,
				Ping:                 caps.Ping,
				Transformer:          bt,
				BufferSize:           cfg.EventBufferSizeOrDefault(),
				BackoffBase:          cfg.Backoff.Base(),
				BackoffCap:           cfg.Backoff.Cap(),
			}
			return session.New(scfg, dial, log).Run(ctx)
		}
	}

	if enabled(cfg, model.PhemexSpot) {
		starters[model.PhemexSpot] = func(ctx context.Context) (<-chan session.Output[model.EventOrderBook], *wire.Error) {
			tag := phemex.MarketTag(instrument)
			entry, err := phemex.InitBookUpdater(ctx, client, instrument)
			if err != nil {
				return nil, err
			}
			sub := model.ExchangeSubscription{Exchange: model.PhemexSpot, MarketTag: tag, Instrument: instrument}
			resolver := transform.NewMarketTagResolver(map[string]model.Instrument{tag: instrument})
			books := map[string]*book.InstrumentOrderBook[phemex.OrderBookUpdate, *phemex.BookUpdater]{tag: entry}
			bt := transform.NewBookTransformer[phemex.OrderBookUpdate, *phemex.BookUpdater](
				resolver, func(u phemex.OrderBookUpdate) string { return u.Symbol }, books, model.PhemexSpot)
			caps := phemex.Capabilities()
			scfg := session.Config[phemex.SubscriptionResponse, phemex.OrderBookUpdate, model.EventOrderBook]{
				Exchange: model.PhemexSpot, Stream: model.L2,
				URL:                  caps.URL,
				SubscriptionRequests: []interface{}{phemex.SubscribeRequest([]model.ExchangeSubscription{sub})},
				ExpectedResponses:    caps.ExpectedResponses([]model.ExchangeSubscription{sub}),
				ValidationTimeout:    caps.SubscriptionValidationTimeout,
				Transformer:          bt,
				BufferSize:           cfg.EventBufferSizeOrDefault(),
				BackoffBase:          cfg.Backoff.Base(),
				BackoffCap:           cfg.Backoff.Cap(),
			}
			return session.New(scfg, dial, log).Run(ctx)
		}
	}

	return starters
}
