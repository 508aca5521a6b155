package streams

import (
	"context"

	"marketfeed/model"
	"marketfeed/session"
)

// CoerceToDataKind relays Event-bearing outputs from one typed session
// channel into the dynamic builder's heterogeneous stream, applying
// toDataKind (one of model.ToDataKindTrade, ToDataKindOrderBook, ...) —
// the Go rendering of the source's per-event-type `From` conversion into
// the DataKind union (spec.md §4.7). Status outputs are dropped: the
// dynamic builder's signature is Stream<MarketEvent<DataKind>>, with no
// slot for a typed ConnectionStatus in spec.md §4.7.
func CoerceToDataKind[E any](
	ctx context.Context,
	in <-chan session.Output[E],
	toDataKind func(model.MarketEvent[E]) model.MarketEvent[model.DataKind],
) <-chan model.MarketEvent[model.DataKind] {
	out := make(chan model.MarketEvent[model.DataKind])
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case output, ok := <-in:
				if !ok {
					return
				}
				if output.Event == nil {
					continue
				}
				select {
				case out <- toDataKind(*output.Event):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
