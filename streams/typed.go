// Package streams implements the two user-facing stream builders from
// spec.md §4.7: a typed Streams[E] builder for single-StreamKind,
// multi-exchange fan-in, and a DynamicStreams builder that routes
// heterogeneous (exchange, instrument, kind) tuples into one merged
// MarketEvent[DataKind] stream.
package streams

import (
	"context"
	"sync"

	"marketfeed/model"
	"marketfeed/session"
	"marketfeed/wire"
)

// Starter builds and runs one exchange's session, returning its outbound
// channel already typed to E. Callers obtain one of these per exchange by
// partially applying session.New(...).Run to a concrete adapter's
// Config — see cmd/marketfeed-demo for worked examples per venue.
type Starter[E any] func(ctx context.Context) (<-chan session.Output[E], *wire.Error)

// Pair associates one merged event with the exchange that produced it,
// the Go rendering of spec.md §4.7's Stream<(ExchangeId, E)>.
type Pair[E any] struct {
	Exchange model.ExchangeId
	Event    model.MarketEvent[E]
}

// Streams is the typed builder: one StreamKind, one or more exchanges,
// each exposed both individually (Select) and merged (JoinMap).
type Streams[E any] struct {
	receivers map[model.ExchangeId]<-chan session.Output[E]
}

// Build runs every starter and collects its receiver. A starter failure
// (the underlying session's first-connect error, per spec.md §4.6) aborts
// the whole build and is returned to the caller — matching the source's
// "transport failure on the very first attempt is fatal" rule.
func Build[E any](ctx context.Context, starters map[model.ExchangeId]Starter[E]) (*Streams[E], *wire.Error) {
	receivers := make(map[model.ExchangeId]<-chan session.Output[E], len(starters))
	for exchangeID, start := range starters {
		ch, err := start(ctx)
		if err != nil {
			return nil, err
		}
		receivers[exchangeID] = ch
	}
	return &Streams[E]{receivers: receivers}, nil
}

// Select returns the receiver for one exchange, if it was part of the
// build group.
func (s *Streams[E]) Select(exchangeID model.ExchangeId) (<-chan session.Output[E], bool) {
	ch, ok := s.receivers[exchangeID]
	return ch, ok
}

// JoinMap merges every exchange's Event-bearing outputs into one channel
// of (exchange, event) pairs; ConnectionStatus outputs are not forwarded
// here (use Select on a single exchange's receiver to observe those).
// Per spec.md §4.7: within one exchange's stream, producer order is
// preserved; no ordering is guaranteed across exchanges.
func (s *Streams[E]) JoinMap(ctx context.Context) <-chan Pair[E] {
	out := make(chan Pair[E])
	var wg sync.WaitGroup

	for exchangeID, ch := range s.receivers {
		wg.Add(1)
		go func(exchangeID model.ExchangeId, ch <-chan session.Output[E]) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case output, ok := <-ch:
					if !ok {
						return
					}
					if output.Event == nil {
						continue
					}
					select {
					case out <- Pair[E]{Exchange: exchangeID, Event: *output.Event}:
					case <-ctx.Done():
						return
					}
				}
			}
		}(exchangeID, ch)
	}

	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}
