package model

import "strings"

// Instrument is a (base, quote) pair of asset symbols, case-insensitive
// internally and preserved lower-case for keys, equality, and hashing.
// Equality compares base with base and quote with quote, so (btc, usdt)
// and (usdt, btc) are different instruments.
type Instrument struct {
	Base  string
	Quote string
}

// NewInstrument lower-cases both legs so callers never need to normalize
// case themselves before using an Instrument as a map key.
func NewInstrument(base, quote string) Instrument {
	return Instrument{Base: strings.ToLower(base), Quote: strings.ToLower(quote)}
}

func (i Instrument) String() string {
	return i.Base + i.Quote
}

// Equal reports field-wise equality; Instrument is already comparable with
// ==, this exists for readability at call sites that compare explicitly.
func (i Instrument) Equal(other Instrument) bool {
	return i.Base == other.Base && i.Quote == other.Quote
}
