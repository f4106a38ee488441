package scout

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/finaos/internal/models"
)

// RenderText renders the report as a fixed-width table. Output is
// byte-identical for identical reports; the generation timestamp is
// deliberately not rendered.
func RenderText(report *models.HarvestReport) string {
	var b strings.Builder

	b.WriteString("=== HARVEST REPORT ===\n\n")
	fmt.Fprintf(&b, "%-10s %14s %12s %14s %10s  %s\n",
		"SYMBOL", "QTY", "PRICE", "GAIN/LOSS", "PCT", "STATUS")

	for _, row := range report.Positions {
		fmt.Fprintf(&b, "%-10s %14.4f %12s %14s %10s  %s\n",
			row.Symbol,
			row.Quantity,
			fmtPrice(row.Price),
			fmtAmount(row.GainLossAmount),
			fmtPercent(row.GainLossPercent),
			row.Status,
		)
	}

	if len(report.SkippedSymbols) > 0 {
		fmt.Fprintf(&b, "\nSkipped tickers: %s\n", strings.Join(report.SkippedSymbols, ", "))
	}

	b.WriteString("\n--- RECOMMENDATIONS ---\n")
	if len(report.Candidates) == 0 {
		b.WriteString("All positions are currently stable or profitable. No harvest needed.\n")
		return b.String()
	}

	for _, c := range report.Candidates {
		fmt.Fprintf(&b, "Sell %s to harvest $%.2f in losses (%.2f%%).\n",
			c.Symbol, -c.LossAmount, c.LossPercent*100)
		fmt.Fprintf(&b, "  Recovery plan: %s\n", strings.TrimSpace(c.ProxyAdvice))
	}

	return b.String()
}

func fmtPrice(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

func fmtAmount(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f", *v)
}

func fmtPercent(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f%%", *v*100)
}
