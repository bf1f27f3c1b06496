package domain

import "time"

// Candle is a single OHLC bar from the price-history provider.
type Candle struct {
	Time  time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// WindowSummary is the reduction of one fetched candle window: the extremes
// reached anywhere in the window plus the most recent close.
type WindowSummary struct {
	High      float64
	Low       float64
	LastClose float64
	Days      int // lookback tier the window was fetched with
	Candles   int // number of candles the summary was reduced from
}

// ArchivedCandle is one provider candle as persisted to the candle archive,
// keyed by the provider id it was fetched for.
type ArchivedCandle struct {
	ProviderID string
	WindowDays int
	FetchedAt  time.Time
	Candle     Candle
}
