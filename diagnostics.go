package plotexp

import (
	"bytes"
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

const (
	hoursPerDay  = 24
	daysPerYear  = 365
	headTailRows = 5
)

// Diagnostics summarises an indexed frame.
type Diagnostics struct {
	Rows, Cols    int
	First, Last   time.Time
	SpanHours     float64
	Years         int
	ExpectedHours int
	Gaps          int
}

// Diagnose computes the summary printed by the omniplot tool.
func (f *Frame) Diagnose() (Diagnostics, error) {
	if len(f.Index) == 0 {
		return Diagnostics{}, ErrNoIndex
	}
	var d Diagnostics
	d.Rows, d.Cols = f.Shape()
	d.First, d.Last = f.Index[0], f.Index[len(f.Index)-1]
	d.SpanHours = d.Last.Sub(d.First).Hours() + 1
	var years = make(map[int]struct{})
	for _, t := range f.Index {
		years[t.Year()] = struct{}{}
	}
	d.Years = len(years)
	d.ExpectedHours = hoursPerDay * daysPerYear * d.Years
	d.Gaps = Gaps(f.Index)
	return d, nil
}

func (d Diagnostics) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Dataframe shape: (%d, %d)\n", d.Rows, d.Cols)
	fmt.Fprintf(&buf, "Number of hours between start and end dates: %.0f\n", d.SpanHours)
	fmt.Fprintf(&buf, "%d hours/day * %d days/year * %d years = %d hours\n",
		hoursPerDay, daysPerYear, d.Years, d.ExpectedHours)
	fmt.Fprintf(&buf, "Index: %s .. %s, %d non-hourly steps\n",
		d.First.Format(time.RFC3339), d.Last.Format(time.RFC3339), d.Gaps)
	return buf.String()
}

// WriteTable prints the head and tail of the frame with its index.
func (f *Frame) WriteTable(out io.Writer) error {
	var names = f.Series()
	var cols = make([][]float64, len(names))
	for i, n := range names {
		cols[i] = f.Column(n)
	}
	var w = tabwriter.NewWriter(out, 0, 8, 1, '\t', tabwriter.AlignRight)
	fmt.Fprint(w, "Time")
	for _, n := range names {
		fmt.Fprintf(w, "\t%s", n)
	}
	fmt.Fprintln(w, "\t")
	var rows = len(f.Index)
	var row = func(i int) {
		fmt.Fprint(w, f.Index[i].Format("2006-01-02 15:04:05"))
		for _, c := range cols {
			fmt.Fprintf(w, "\t%g", c[i])
		}
		fmt.Fprintln(w, "\t")
	}
	for i := 0; i < rows && i < headTailRows; i++ {
		row(i)
	}
	if rows > 2*headTailRows {
		fmt.Fprintln(w, "...\t")
	}
	for i := max(headTailRows, rows-headTailRows); i < rows; i++ {
		row(i)
	}
	fmt.Fprintf(w, "\n[%d rows x %d columns]\n", rows, len(names))
	return w.Flush()
}
