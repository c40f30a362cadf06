package backtest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// RenderLedger formats the ledger as a rounded text table.
func RenderLedger(ledger []LedgerRow) string {
	var b bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&b)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Race", "Drivers", "Constructors", "DRS", "Moves", "Points", "Total", "Value", "Unused"})
	for _, r := range ledger {
		moves := "-"
		if r.UsedMoves >= 0 {
			moves = fmt.Sprintf("%d/%d", r.UsedMoves, r.MaxMoves)
		}
		t.AppendRow(table.Row{
			r.Race,
			names(r.Drivers),
			names(r.Constructors),
			r.DRSDriver,
			moves,
			r.Points,
			r.TotalPoints,
			fmt.Sprintf("%.2f", r.TotalValue),
			fmt.Sprintf("%.2f", r.UnusedBudget),
		})
	}
	t.Render()
	return b.String()
}

func names(lines []AssetLine) string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Name
	}
	return strings.Join(out, " ")
}
