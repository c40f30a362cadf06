package data

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"f1-fantasy/internal/model"
)

// Row is one asset's line for one race. Points and Price are nil when the
// source cell was empty.
type Row struct {
	Season      int
	Race        int
	Constructor string
	Driver      string
	Points      *int
	Price       *float64
	Derivs      map[string]float64
}

// Name is the asset identity: the driver for driver rows, else the constructor.
func (r Row) Name() string {
	if r.Driver != "" {
		return r.Driver
	}
	return r.Constructor
}

// Table holds the rows of one asset kind.
type Table struct {
	Kind   model.AssetKind
	Rows   []Row
	Derivs []string
}

var baseColumns = map[string]bool{
	"season": true, "race": true, "constructor": true, "driver": true, "points": true, "price": true,
}

// LoadTableCSV reads a driver or constructor table from path.
func LoadTableCSV(path string, kind model.AssetKind) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s table", kind)
	}
	defer f.Close()
	t, err := ReadTableCSV(f, kind)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return t, nil
}

// ReadTableCSV parses a table with columns Season, Race, Constructor,
// Driver (drivers only), Points and Price. Every other column is read as a
// derived metric; empty cells leave the metric unset for that row.
func ReadTableCSV(r io.Reader, kind model.AssetKind) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "read header")
	}

	col := make(map[string]int, len(header))
	var derivCols []int
	t := &Table{Kind: kind}
	for i, h := range header {
		h = strings.TrimSpace(h)
		key := strings.ToLower(h)
		if baseColumns[key] {
			col[key] = i
			continue
		}
		derivCols = append(derivCols, i)
		t.Derivs = append(t.Derivs, h)
	}
	required := []string{"season", "race", "constructor", "points", "price"}
	if kind == model.KindDriver {
		required = append(required, "driver")
	}
	for _, name := range required {
		if _, ok := col[name]; !ok {
			return nil, errors.Errorf("%s table is missing column %q", kind, name)
		}
	}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		row, err := parseRow(rec, col, kind)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		for k, i := range derivCols {
			cell := strings.TrimSpace(rec[i])
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d column %q", line, t.Derivs[k])
			}
			if row.Derivs == nil {
				row.Derivs = make(map[string]float64, len(derivCols))
			}
			row.Derivs[t.Derivs[k]] = v
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func parseRow(rec []string, col map[string]int, kind model.AssetKind) (Row, error) {
	var row Row
	var err error
	if row.Season, err = strconv.Atoi(strings.TrimSpace(rec[col["season"]])); err != nil {
		return row, errors.Wrap(err, "season")
	}
	if row.Race, err = strconv.Atoi(strings.TrimSpace(rec[col["race"]])); err != nil {
		return row, errors.Wrap(err, "race")
	}
	row.Constructor = strings.TrimSpace(rec[col["constructor"]])
	if kind == model.KindDriver {
		row.Driver = strings.TrimSpace(rec[col["driver"]])
		if row.Driver == "" {
			return row, errors.New("empty driver")
		}
	}
	if row.Constructor == "" {
		return row, errors.New("empty constructor")
	}
	if cell := strings.TrimSpace(rec[col["points"]]); cell != "" {
		// Points sometimes arrive as "12.0".
		f, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return row, errors.Wrap(err, "points")
		}
		if f != math.Trunc(f) {
			return row, errors.Errorf("points %q is not a whole number", cell)
		}
		p := int(f)
		row.Points = &p
	}
	if cell := strings.TrimSpace(rec[col["price"]]); cell != "" {
		f, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return row, errors.Wrap(err, "price")
		}
		row.Price = &f
	}
	return row, nil
}

// WriteTableCSV writes t in the layout ReadTableCSV accepts.
func WriteTableCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	header := []string{"Season", "Race", "Constructor"}
	if t.Kind == model.KindDriver {
		header = append(header, "Driver")
	}
	header = append(header, "Points", "Price")
	header = append(header, t.Derivs...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range t.Rows {
		rec := []string{strconv.Itoa(r.Season), strconv.Itoa(r.Race), r.Constructor}
		if t.Kind == model.KindDriver {
			rec = append(rec, r.Driver)
		}
		points, price := "", ""
		if r.Points != nil {
			points = strconv.Itoa(*r.Points)
		}
		if r.Price != nil {
			price = strconv.FormatFloat(*r.Price, 'f', -1, 64)
		}
		rec = append(rec, points, price)
		for _, d := range t.Derivs {
			cell := ""
			if v, ok := r.Derivs[d]; ok {
				cell = strconv.FormatFloat(v, 'f', -1, 64)
			}
			rec = append(rec, cell)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Seasons lists the seasons present in t.
func (t *Table) Seasons() []int {
	seen := map[int]bool{}
	for _, r := range t.Rows {
		seen[r.Season] = true
	}
	out := make([]int, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Ints(out)
	return out
}

// Races lists the race numbers present for season.
func (t *Table) Races(season int) []int {
	seen := map[int]bool{}
	for _, r := range t.Rows {
		if r.Season == season {
			seen[r.Race] = true
		}
	}
	out := make([]int, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}
