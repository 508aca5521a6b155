package streams

import (
	"context"
	"fmt"
	"sync"

	"marketfeed/model"
	"marketfeed/wire"
)

// Tuple is one requested (exchange, instrument, stream kind) triple, the
// Go rendering of spec.md §4.7's dynamic builder input iterable.
type Tuple struct {
	Exchange model.ExchangeId
	Base     string
	Quote    string
	Kind     model.StreamKind
}

// DynamicStarter builds and runs one session for a batch of tuples
// sharing the same (exchange, stream kind) — spec.md §4.7's "each batch
// becomes one session" — and returns its output already coerced to
// MarketEvent[DataKind] via CoerceToDataKind.
type DynamicStarter func(ctx context.Context, tuples []Tuple) (<-chan model.MarketEvent[model.DataKind], *wire.Error)

type groupKey struct {
	exchange model.ExchangeId
	kind     model.StreamKind
}

// DynamicStreams merges heterogeneous stream kinds and exchanges into one
// MarketEvent[DataKind] stream, per spec.md §4.7.
type DynamicStreams struct {
	channels []<-chan model.MarketEvent[model.DataKind]
}

// BuildDynamic groups tuples by (exchange, kind) and starts one session
// per group via the matching registered DynamicStarter. starters is keyed
// first by exchange, then by stream kind, so callers register only the
// combinations an exchange's adapter actually supports.
func BuildDynamic(ctx context.Context, tuples []Tuple, starters map[model.ExchangeId]map[model.StreamKind]DynamicStarter) (*DynamicStreams, *wire.Error) {
	groups := make(map[groupKey][]Tuple)
	var order []groupKey
	for _, t := range tuples {
		k := groupKey{t.Exchange, t.Kind}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], t)
	}

	ds := &DynamicStreams{}
	for _, k := range order {
		byKind, ok := starters[k.exchange]
		if !ok {
			return nil, wire.NewSubscribe(fmt.Sprintf("no adapter registered for exchange %s", k.exchange))
		}
		start, ok := byKind[k.kind]
		if !ok {
			return nil, wire.NewSubscribe(fmt.Sprintf("exchange %s does not support stream kind %s", k.exchange, k.kind))
		}
		ch, err := start(ctx, groups[k])
		if err != nil {
			return nil, err
		}
		ds.channels = append(ds.channels, ch)
	}
	return ds, nil
}

// Merge fans in every group's channel into one. Ordering within one
// (exchange, instrument, kind) triple is preserved; no ordering is
// guaranteed across triples, per spec.md §4.7.
func (d *DynamicStreams) Merge(ctx context.Context) <-chan model.MarketEvent[model.DataKind] {
	out := make(chan model.MarketEvent[model.DataKind])
	var wg sync.WaitGroup

	for _, ch := range d.channels {
		wg.Add(1)
		go func(ch <-chan model.MarketEvent[model.DataKind]) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case evt, ok := <-ch:
					if !ok {
						return
					}
					select {
					case out <- evt:
					case <-ctx.Done():
						return
					}
				}
			}
		}(ch)
	}

	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}
