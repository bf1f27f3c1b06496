package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Signal Impact Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Signals: %d | Open: %d | Closed: %d\n\n",
		r.TotalSignals, r.OpenSignals, r.ClosedSignals))

	// Impact Factor Summary
	sb.WriteString("## Impact Factor Summary\n\n")
	if r.ClosedSignals > 0 {
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Mean | %.4f |\n", r.Impact.Mean))
		sb.WriteString(fmt.Sprintf("| Min | %.4f |\n", r.Impact.Min))
		sb.WriteString(fmt.Sprintf("| Max | %.4f |\n", r.Impact.Max))
		sb.WriteString(fmt.Sprintf("| Positive | %d |\n", r.Impact.Positive))
		sb.WriteString(fmt.Sprintf("| Negative | %d |\n", r.Impact.Negative))
	} else {
		sb.WriteString("No closed signals yet.\n")
	}
	sb.WriteString("\n")

	// Per-Source Breakdown
	sb.WriteString("## Sources\n\n")
	if len(r.Sources) > 0 {
		sb.WriteString("| Source | Signals | Closed | AvgImpact |\n")
		sb.WriteString("|--------|---------|--------|-----------|\n")
		for _, s := range r.Sources {
			sb.WriteString(fmt.Sprintf("| %s | %d | %d | %.4f |\n",
				s.SourceHandle, s.Signals, s.Closed, s.AvgImpact))
		}
	} else {
		sb.WriteString("No sources available.\n")
	}
	sb.WriteString("\n")

	// Closed Signals
	sb.WriteString("## Closed Signals\n\n")
	if len(r.Closed) > 0 {
		sb.WriteString("| ID | Source | Symbol | Direction | Entry | PnL% | MFE% | MAE% | Impact | Closed |\n")
		sb.WriteString("|----|--------|--------|-----------|-------|------|------|------|--------|--------|\n")
		for _, row := range r.Closed {
			closedAt := ""
			if row.ClosedAt != nil {
				closedAt = row.ClosedAt.Format(time.RFC3339)
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %.6g | %.2f | %.2f | %.2f | %.2f | %s |\n",
				row.ID, row.SourceHandle, row.Symbol, row.Direction,
				row.EntryPrice, row.PnlPct, row.LifetimeMFE, row.LifetimeMAE,
				row.ImpactFactor, closedAt))
		}
	} else {
		sb.WriteString("No closed signals available.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
