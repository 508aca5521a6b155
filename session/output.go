package session

import "marketfeed/model"

// Output is one value delivered on a session's outbound channel: exactly
// one of Event or Status is set, mirroring the wire package's
// Frame[T]{Value, Err, Skip} trichotomy for the same reason — Go has no
// sum types, and callers switch on which field is non-nil.
type Output[E any] struct {
	Event  *model.MarketEvent[E]
	Status *model.MarketEvent[model.ConnectionStatus]
}
