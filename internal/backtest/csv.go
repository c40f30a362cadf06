package backtest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

func WriteLedgerCSV(path string, ledger []LedgerRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteLedger(f, ledger)
}

// WriteLedger writes one CSV line per race. Asset columns are D1..Dn and
// C1..Cn, each with name, value and points.
func WriteLedger(out io.Writer, ledger []LedgerRow) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	nd, nc := 0, 0
	for _, r := range ledger {
		nd = max(nd, len(r.Drivers))
		nc = max(nc, len(r.Constructors))
	}

	header := []string{
		"strategy",
		"season",
		"race",
		"total_value",
		"starting_value",
		"points",
		"total_points",
		"unused_budget",
		"total_budget",
		"max_moves",
		"used_moves",
		"drs_driver",
	}
	header = append(header, assetHeader("D", nd)...)
	header = append(header, assetHeader("C", nc)...)
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range ledger {
		row := []string{
			r.Strategy,
			strconv.Itoa(r.Season),
			strconv.Itoa(r.Race),
			fmtFloat(r.TotalValue),
			fmtFloat(r.StartingValue),
			strconv.Itoa(r.Points),
			strconv.Itoa(r.TotalPoints),
			fmtFloat(r.UnusedBudget),
			fmtFloat(r.TotalBudget),
			strconv.Itoa(r.MaxMoves),
			strconv.Itoa(r.UsedMoves),
			r.DRSDriver,
		}
		row = append(row, assetCells(r.Drivers, nd)...)
		row = append(row, assetCells(r.Constructors, nc)...)
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func assetHeader(prefix string, n int) []string {
	out := make([]string, 0, 3*n)
	for i := 1; i <= n; i++ {
		out = append(out,
			fmt.Sprintf("%s%d", prefix, i),
			fmt.Sprintf("%s%d_val", prefix, i),
			fmt.Sprintf("%s%d_pts", prefix, i),
		)
	}
	return out
}

func assetCells(lines []AssetLine, n int) []string {
	out := make([]string, 0, 3*n)
	for i := 0; i < n; i++ {
		if i >= len(lines) {
			out = append(out, "", "", "")
			continue
		}
		out = append(out, lines[i].Name, fmtFloat(lines[i].Price), strconv.Itoa(lines[i].Points))
	}
	return out
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
