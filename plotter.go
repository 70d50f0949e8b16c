package plotexp

import (
	"image/color"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// ChartOptions sizes a rendered PNG.
type ChartOptions struct {
	Title  string
	Width  vg.Length
	Height vg.Length
	DPI    int
}

var (
	WaterfallChart = ChartOptions{Title: "transaction waterfall", Width: 6 * vg.Inch, Height: 4 * vg.Inch, DPI: 200}
	OverlayChart   = ChartOptions{Width: 15 * vg.Inch, Height: 4 * vg.Inch, DPI: 100}
	SubplotChart   = ChartOptions{Width: 15 * vg.Inch, Height: 6 * vg.Inch, DPI: 100}
)

func (o ChartOptions) canvas() *vgimg.Canvas {
	var dpi = o.DPI
	if dpi <= 0 {
		dpi = vgimg.DefaultDPI
	}
	return vgimg.NewWith(vgimg.UseWH(o.Width, o.Height), vgimg.UseDPI(dpi))
}

func writePNG(w io.Writer, c *vgimg.Canvas) error {
	_, err := vgimg.PngCanvas{Canvas: c}.WriteTo(w)
	return errors.Wrap(err, "cannot write png")
}

// SaveFile creates path and writes into it with write.
func SaveFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "cannot open file")
	}
	if err = write(f); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "cannot close file")
}

func invisible(b *plotter.BarChart) {
	b.Color = color.Transparent
	b.LineStyle.Width = 0
}

// RenderWaterfall draws transaction bars horizontally, one row per bar,
// each floating at its offset from the earliest start.
func RenderWaterfall(w io.Writer, bars []TxBar, opts ChartOptions) error {
	var (
		names    = make([]string, len(bars))
		offsets  = make(plotter.Values, len(bars))
		lengths  = make(plotter.Values, len(bars))
		barWidth = vg.Points(20)
	)
	for i, b := range bars {
		names[i], offsets[i], lengths[i] = b.Name, b.Offset, b.Duration
	}
	var p = plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "ms since first lock request"

	base, err := plotter.NewBarChart(offsets, barWidth)
	if err != nil {
		return errors.Wrap(err, "cannot create bars")
	}
	base.Horizontal = true
	invisible(base)

	held, err := plotter.NewBarChart(lengths, barWidth)
	if err != nil {
		return errors.Wrap(err, "cannot create bars")
	}
	held.Horizontal = true
	held.Color = plotutil.Color(0)
	held.StackOn(base)

	p.Add(base, held)
	p.Legend.Add("d", held)
	p.Legend.Top = true
	p.NominalY(names...)

	var c = opts.canvas()
	p.Draw(draw.New(c))
	return writePNG(w, c)
}

// RenderAmountWaterfall draws an amount waterfall with its connecting steps
// and a value label on every bar.
func RenderAmountWaterfall(w io.Writer, wf *Waterfall, opts ChartOptions) error {
	var base, height = wf.Visible()
	var p = plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "Transaction Types"
	p.Y.Min, p.Y.Max = 0, wf.Limit()
	p.Y.Tick.Marker = moneyTicks{}

	blank, err := plotter.NewBarChart(plotter.Values(base), vg.Points(30))
	if err != nil {
		return errors.Wrap(err, "cannot create bars")
	}
	invisible(blank)
	bars, err := plotter.NewBarChart(plotter.Values(height), vg.Points(30))
	if err != nil {
		return errors.Wrap(err, "cannot create bars")
	}
	bars.Color = plotutil.Color(0)
	bars.StackOn(blank)

	var pts = wf.Steps()
	var xys = make(plotter.XYs, len(pts))
	for i, pt := range pts {
		xys[i].X, xys[i].Y = pt[0], pt[1]
	}
	step, err := plotter.NewLine(xys)
	if err != nil {
		return errors.Wrap(err, "cannot create step line")
	}
	step.Color = color.Black

	var ys = wf.LabelPositions()
	var lbl = plotter.XYLabels{XYs: make(plotter.XYs, wf.Len()), Labels: make([]string, wf.Len())}
	for i, a := range wf.Amounts {
		lbl.XYs[i].X, lbl.XYs[i].Y = float64(i), ys[i]
		lbl.Labels[i] = formatThousands(a)
	}
	labels, err := plotter.NewLabels(lbl)
	if err != nil {
		return errors.Wrap(err, "cannot create labels")
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = draw.XCenter
	}

	p.Add(blank, bars, step, labels)
	p.NominalX(wf.Labels...)

	var c = opts.canvas()
	p.Draw(draw.New(c))
	return writePNG(w, c)
}

// moneyTicks formats value ticks as whole dollars.
type moneyTicks struct{}

func (moneyTicks) Ticks(min, max float64) []plot.Tick {
	var ticks = plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = "$" + formatThousands(ticks[i].Value)
		}
	}
	return ticks
}

func formatThousands(v float64) string {
	var neg = v < 0
	var s = strconv.FormatFloat(math.Abs(math.Round(v)), 'f', 0, 64)
	var out []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

// segments splits a series at NaN values so masked readings leave gaps.
func segments(xs, ys []float64) []plotter.XYs {
	var (
		out []plotter.XYs
		cur plotter.XYs
	)
	for i := range xs {
		if math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: xs[i], Y: ys[i]})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func unixSeconds(f *Frame) []float64 {
	var xs = make([]float64, len(f.Index))
	for i, t := range f.Index {
		xs[i] = float64(t.Unix())
	}
	return xs
}

func timePlot(f *Frame) *plot.Plot {
	var p = plot.New()
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.X.Min = float64(f.Index[0].Unix())
	p.X.Max = float64(f.Index[len(f.Index)-1].Unix())
	return p
}

func addSeries(p *plot.Plot, name string, xs, ys []float64, clr color.Color) error {
	for i, seg := range segments(xs, ys) {
		l, err := plotter.NewLine(seg)
		if err != nil {
			return errors.Wrapf(err, "cannot create line %s", name)
		}
		l.Color = clr
		p.Add(l)
		if i == 0 {
			p.Legend.Add(name, l)
		}
	}
	return nil
}

// RenderOverlay draws every series of an indexed frame on one time axis.
func RenderOverlay(w io.Writer, f *Frame, opts ChartOptions) error {
	if len(f.Index) == 0 {
		return ErrNoIndex
	}
	var xs = unixSeconds(f)
	var p = timePlot(f)
	p.Title.Text = opts.Title
	p.Legend.Top = true
	for i, name := range f.Series() {
		if err := addSeries(p, name, xs, f.Column(name), plotutil.Color(i)); err != nil {
			return err
		}
	}
	var c = opts.canvas()
	p.Draw(draw.New(c))
	return writePNG(w, c)
}

// RenderSubplots draws one aligned tile per series, sharing the time axis.
func RenderSubplots(w io.Writer, f *Frame, opts ChartOptions) error {
	if len(f.Index) == 0 {
		return ErrNoIndex
	}
	var (
		xs    = unixSeconds(f)
		names = f.Series()
		plots = make([][]*plot.Plot, len(names))
	)
	for i, name := range names {
		var p = timePlot(f)
		if i == 0 {
			p.Title.Text = opts.Title
		}
		p.Legend.Top = true
		if err := addSeries(p, name, xs, f.Column(name), plotutil.Color(i)); err != nil {
			return err
		}
		plots[i] = []*plot.Plot{p}
	}
	var c = opts.canvas()
	var tiles = draw.Tiles{
		Rows: len(names),
		Cols: 1,
		PadY: vg.Millimeter,
	}
	var canvases = plot.Align(plots, tiles, draw.New(c))
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}
	return writePNG(w, c)
}
