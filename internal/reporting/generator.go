package reporting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"signal-impact-lab/internal/domain"
)

// SignalLister provides the full signal set for report generation.
type SignalLister interface {
	All(ctx context.Context) ([]*domain.TradeSignal, error)
}

// Generator builds reports from a signal store and writes them to disk.
type Generator struct {
	signals SignalLister
	now     func() time.Time
}

// NewGenerator creates a Generator. now may be nil, in which case time.Now
// is used.
func NewGenerator(signals SignalLister, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{signals: signals, now: now}
}

// Build assembles the aggregate report from all stored signals.
func (g *Generator) Build(ctx context.Context) (*Report, error) {
	signals, err := g.signals.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list signals: %w", err)
	}
	return buildReport(signals, g.now()), nil
}

// Generate builds the report and writes report.md and closed_signals.csv
// into outputDir.
func (g *Generator) Generate(ctx context.Context, outputDir string) (*Report, error) {
	report, err := g.Build(ctx)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	mdPath := filepath.Join(outputDir, "report.md")
	if err := os.WriteFile(mdPath, []byte(RenderMarkdown(report)), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", mdPath, err)
	}

	csvPath := filepath.Join(outputDir, "closed_signals.csv")
	if err := os.WriteFile(csvPath, []byte(RenderCSV(report.Closed)), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", csvPath, err)
	}

	return report, nil
}

func buildReport(signals []*domain.TradeSignal, generatedAt time.Time) *Report {
	report := &Report{GeneratedAt: generatedAt, TotalSignals: len(signals)}

	type sourceAgg struct {
		signals   int
		closed    int
		impactSum float64
	}
	sources := make(map[string]*sourceAgg)

	var impactSum float64
	for _, sig := range signals {
		handle := sig.SourceHandle
		if handle == "" {
			handle = "(unknown)"
		}
		agg := sources[handle]
		if agg == nil {
			agg = &sourceAgg{}
			sources[handle] = agg
		}
		agg.signals++

		if sig.EvaluationOpen || sig.ImpactFactor == nil {
			report.OpenSignals++
			continue
		}

		impact := *sig.ImpactFactor
		report.ClosedSignals++
		agg.closed++
		agg.impactSum += impact
		impactSum += impact

		if report.ClosedSignals == 1 {
			report.Impact.Min = impact
			report.Impact.Max = impact
		} else {
			if impact < report.Impact.Min {
				report.Impact.Min = impact
			}
			if impact > report.Impact.Max {
				report.Impact.Max = impact
			}
		}
		if impact > 0 {
			report.Impact.Positive++
		} else if impact < 0 {
			report.Impact.Negative++
		}

		report.Closed = append(report.Closed, ClosedSignalRow{
			ID:           sig.ID,
			SourceHandle: sig.SourceHandle,
			Symbol:       sig.PrimarySymbol(),
			Direction:    sig.EffectiveDirection(),
			EntryPrice:   sig.EntryPrice,
			PnlPct:       sig.PnlPct,
			LifetimeMFE:  sig.LifetimeMFE,
			LifetimeMAE:  sig.LifetimeMAE,
			ImpactFactor: impact,
			CreatedAt:    sig.CreatedAt,
			ClosedAt:     sig.ClosedAt,
		})
	}

	if report.ClosedSignals > 0 {
		report.Impact.Mean = impactSum / float64(report.ClosedSignals)
	}

	for handle, agg := range sources {
		row := SourceRow{
			SourceHandle: handle,
			Signals:      agg.signals,
			Closed:       agg.closed,
		}
		if agg.closed > 0 {
			row.AvgImpact = agg.impactSum / float64(agg.closed)
		}
		report.Sources = append(report.Sources, row)
	}
	sort.Slice(report.Sources, func(i, j int) bool {
		if report.Sources[i].AvgImpact == report.Sources[j].AvgImpact {
			return report.Sources[i].SourceHandle < report.Sources[j].SourceHandle
		}
		return report.Sources[i].AvgImpact > report.Sources[j].AvgImpact
	})

	return report
}
