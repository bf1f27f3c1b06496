package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderCSV renders closed signal rows as CSV string.
func RenderCSV(rows []ClosedSignalRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("id,source_handle,symbol,direction,entry_price,pnl_pct,")
	sb.WriteString("lifetime_mfe_pct,lifetime_mae_pct,impact_factor,created_at,closed_at\n")

	// Rows
	for _, row := range rows {
		closedAt := ""
		if row.ClosedAt != nil {
			closedAt = row.ClosedAt.Format(time.RFC3339)
		}
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%.8f,%.4f,%.4f,%.4f,%.4f,%s,%s\n",
			row.ID,
			row.SourceHandle,
			row.Symbol,
			row.Direction,
			row.EntryPrice,
			row.PnlPct,
			row.LifetimeMFE,
			row.LifetimeMAE,
			row.ImpactFactor,
			row.CreatedAt.Format(time.RFC3339),
			closedAt,
		))
	}

	return sb.String()
}
