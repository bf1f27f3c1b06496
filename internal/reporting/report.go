// Package reporting summarizes evaluated signals into Markdown and CSV
// outcome reports.
package reporting

import (
	"time"

	"signal-impact-lab/internal/domain"
)

// Report is the aggregate outcome view over all stored signals.
type Report struct {
	GeneratedAt time.Time

	TotalSignals  int
	OpenSignals   int
	ClosedSignals int

	Impact ImpactStats

	// Per-source rows, sorted by average impact descending.
	Sources []SourceRow

	// Closed signals, oldest first. Also the CSV payload.
	Closed []ClosedSignalRow
}

// ImpactStats describes the distribution of written impact factors.
type ImpactStats struct {
	Mean     float64
	Min      float64
	Max      float64
	Positive int // closed signals with impact > 0
	Negative int // closed signals with impact < 0
}

// SourceRow aggregates outcomes per originating source handle.
type SourceRow struct {
	SourceHandle string
	Signals      int
	Closed       int
	AvgImpact    float64 // over closed signals only
}

// ClosedSignalRow is one closed signal in the report.
type ClosedSignalRow struct {
	ID           string
	SourceHandle string
	Symbol       string
	Direction    domain.Direction
	EntryPrice   float64
	PnlPct       float64
	LifetimeMFE  float64
	LifetimeMAE  float64
	ImpactFactor float64
	CreatedAt    time.Time
	ClosedAt     *time.Time
}
