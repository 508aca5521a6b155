// Package model holds the wire-independent data types shared across the
// ingestion engine: exchange/stream identifiers, instruments, book levels,
// and the normalized event envelope delivered to consumers.
package model

// ExchangeId is a closed enumeration tagging one venue. It is comparable
// and usable as a map key, and carries a stable lower-case string form
// matching the teacher's DataSource string constants
// (market/data_source.go) generalized to the full adapter roster.
type ExchangeId int

const (
	BinanceSpot ExchangeId = iota
	PoloniexSpot
	HtxSpot
	OkxSpot
	KuCoinSpot
	AscendExSpot
	BitstampSpot
	CoinExSpot
	ExmoSpot
	PhemexSpot
	WooxSpot
	exchangeIdCount
)

var exchangeIdNames = [exchangeIdCount]string{
	BinanceSpot:  "binancespot",
	PoloniexSpot: "poloniexspot",
	HtxSpot:      "htxspot",
	OkxSpot:      "okxspot",
	KuCoinSpot:   "kucoinspot",
	AscendExSpot: "ascendexspot",
	BitstampSpot: "bitstampspot",
	CoinExSpot:   "coinexspot",
	ExmoSpot:     "exmospot",
	PhemexSpot:   "phemexspot",
	WooxSpot:     "wooxspot",
}

// String returns the stable lower-case identifier used as a map/metrics key.
func (e ExchangeId) String() string {
	if e < 0 || int(e) >= len(exchangeIdNames) {
		return "unknown"
	}
	return exchangeIdNames[e]
}

// AllExchangeIds lists every known venue, in declaration order.
func AllExchangeIds() []ExchangeId {
	ids := make([]ExchangeId, 0, exchangeIdCount)
	for i := ExchangeId(0); i < exchangeIdCount; i++ {
		ids = append(ids, i)
	}
	return ids
}
