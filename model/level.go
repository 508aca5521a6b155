package model

// Level is a single order-book price/size pair. Ordering is lexicographic
// on (price, size); equality is bitwise on both fields — NaN must never
// occur in a Level, adapters are responsible for rejecting malformed
// payloads before constructing one.
type Level struct {
	Price float64
	Size  float64
}

// Less orders two levels by price then size, ascending.
func (l Level) Less(other Level) bool {
	if l.Price != other.Price {
		return l.Price < other.Price
	}
	return l.Size < other.Size
}

// Equal is bitwise equality on both fields, matching the source's
// derived PartialEq (assets/level.rs) rather than an epsilon comparison.
func (l Level) Equal(other Level) bool {
	return l.Price == other.Price && l.Size == other.Size
}
