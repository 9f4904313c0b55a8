package sim

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"gonum.org/v1/gonum/mat"
)

// WriteSeries renders every n-th row of series as a table into w.
// The first column holds the step index and the remaining columns are labelled by names.
// Values are printed with prec decimal places.
// It returns error if series is nil, n is not positive or names does not match the column count.
func WriteSeries(w io.Writer, series *mat.Dense, n, prec int, names ...string) error {
	if series == nil || n <= 0 {
		return fmt.Errorf("invalid data supplied")
	}

	r, c := series.Dims()
	if len(names) != c {
		return fmt.Errorf("invalid series names: %d != %d", len(names), c)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, c+1)
	header[0] = "step"
	for j, name := range names {
		header[j+1] = name
	}
	t.AppendHeader(header)

	for i := 0; i < r; i += n {
		row := make(table.Row, c+1)
		row[0] = i
		for j := 0; j < c; j++ {
			row[j+1] = strconv.FormatFloat(series.At(i, j), 'f', prec, 64)
		}
		t.AppendRow(row)
	}

	// last row always makes it in
	if (r-1)%n != 0 {
		row := make(table.Row, c+1)
		row[0] = r - 1
		for j := 0; j < c; j++ {
			row[j+1] = strconv.FormatFloat(series.At(r-1, j), 'f', prec, 64)
		}
		t.AppendRow(row)
	}

	t.Render()

	return nil
}
