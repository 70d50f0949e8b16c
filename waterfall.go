package plotexp

import (
	"math"

	"github.com/pkg/errors"
)

// NetLabel names the closing bar of an amount waterfall.
const NetLabel = "net"

// Waterfall is an amount waterfall: every bar floats on the running total of
// the bars before it and a final net bar shows the total from zero.
type Waterfall struct {
	Labels  []string
	Amounts []float64
	// Blank is the invisible part under each bar.
	Blank []float64
	Total float64
}

// NewWaterfall computes the running offsets. The net bar is appended, callers
// must not include a total.
func NewWaterfall(labels []string, amounts []float64) (*Waterfall, error) {
	if len(labels) != len(amounts) {
		return nil, errors.Errorf("plotexp: %d labels for %d amounts", len(labels), len(amounts))
	}
	if len(amounts) == 0 {
		return nil, errors.New("plotexp: empty waterfall")
	}
	var w = &Waterfall{
		Labels:  append(append([]string{}, labels...), NetLabel),
		Amounts: make([]float64, 0, len(amounts)+1),
		Blank:   make([]float64, 0, len(amounts)+1),
	}
	var sum float64
	for _, a := range amounts {
		w.Blank = append(w.Blank, sum)
		w.Amounts = append(w.Amounts, a)
		sum += a
	}
	w.Total = sum
	w.Amounts = append(w.Amounts, sum)
	w.Blank = append(w.Blank, 0)
	return w, nil
}

// SalesWaterfall is the demonstration data set of the amount waterfall.
func SalesWaterfall() *Waterfall {
	var w, _ = NewWaterfall(
		[]string{"sales", "returns", "credit fees", "rebates", "late charges", "shipping"},
		[]float64{350000, -30000, -7500, -25000, 95000, -7000},
	)
	return w
}

// Len counts bars including the net bar.
func (w *Waterfall) Len() int { return len(w.Amounts) }

func (w *Waterfall) isNet(i int) bool { return i == len(w.Amounts)-1 }

// Visible returns the drawn part of every bar. Negative amounts hang below
// their blank, so the bar is drawn on top of blank+amount with height -amount.
func (w *Waterfall) Visible() (base, height []float64) {
	base = make([]float64, w.Len())
	height = make([]float64, w.Len())
	for i, a := range w.Amounts {
		if a >= 0 {
			base[i], height[i] = w.Blank[i], a
		} else {
			base[i], height[i] = w.Blank[i]+a, -a
		}
	}
	return base, height
}

// Steps returns the connecting line between bars: for bar i the level after
// it, held from the bar's position to the next one.
func (w *Waterfall) Steps() [][2]float64 {
	var pts = make([][2]float64, 0, 2*(w.Len()-1))
	for i := 0; i < w.Len()-1; i++ {
		var level = w.Blank[i] + w.Amounts[i]
		pts = append(pts, [2]float64{float64(i), level}, [2]float64{float64(i + 1), level})
	}
	return pts
}

// max is the largest amount, the net bar included.
func (w *Waterfall) max() float64 {
	var m = math.Inf(-1)
	for _, a := range w.Amounts {
		m = math.Max(m, a)
	}
	return m
}

// LabelPositions returns the y of each bar's annotation. Positive bars are
// labelled above the top, negative ones below the bottom.
func (w *Waterfall) LabelPositions() []float64 {
	var (
		max       = w.max()
		negOffset = max / 25
		posOffset = max / 50
		ys        = make([]float64, w.Len())
	)
	for i, a := range w.Amounts {
		var y = w.Blank[i] + a
		if w.isNet(i) {
			y = w.Total
		}
		if a > 0 {
			y += posOffset
		} else {
			y -= negOffset
		}
		ys[i] = y
	}
	return ys
}

// Limit is the top of the value axis: the highest blank plus a fifteenth of
// the largest amount, leaving room for labels. The net bar's blank is zero.
func (w *Waterfall) Limit() float64 {
	var top float64
	for _, b := range w.Blank {
		top = math.Max(top, b)
	}
	return top + math.Trunc(w.max()/15)
}

// TxBar is one bar of a transaction waterfall, in milliseconds relative to
// the earliest start in the chart.
type TxBar struct {
	Name     string
	Offset   float64
	Duration float64
	Tx       Transaction
}

// minBarMillis keeps zero-length lock holds visible.
const minBarMillis = 1

// TransactionWaterfall lays out each row as a bar starting at its offset from
// the earliest start and lasting until its end clock.
func TransactionWaterfall(table TransactionTable) ([]TxBar, error) {
	if len(table) == 0 {
		return nil, errors.New("plotexp: no transactions to chart")
	}
	var origin = table[0].Start
	for _, r := range table[1:] {
		if r.Start.Before(origin) {
			origin = r.Start
		}
	}
	var bars = make([]TxBar, 0, len(table))
	for _, r := range table {
		_, end, err := r.Tx.Span()
		if err != nil {
			return nil, err
		}
		var d = float64(end.Sub(r.Start).Microseconds()) / 1000
		if d < minBarMillis {
			d = minBarMillis
		}
		bars = append(bars, TxBar{
			Name:     r.Name,
			Offset:   float64(r.Start.Sub(origin).Microseconds()) / 1000,
			Duration: d,
			Tx:       r.Tx,
		})
	}
	return bars, nil
}
