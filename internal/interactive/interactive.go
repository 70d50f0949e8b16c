// Package interactive opens indexed frames in a gnuplot window. It needs the
// gnuplot binary on PATH: importing the glot package panics without it, so
// only binaries that want the window should import this package.
package interactive

import (
	"github.com/Arafatk/glot"
	"github.com/pkg/errors"

	"github.com/dati-mipt/plotexp"
)

// DateFormat is the strftime layout of the time axis ticks.
const DateFormat = "%Y-%m-%d"

// axisCommands make gnuplot read x values as unix seconds and print dates.
// They hold gnuplot's own % verbs, so they are sent as Cmd arguments.
func axisCommands() []string {
	return []string{
		"set xdata time",
		`set timefmt "%s"`,
		`set format x "` + DateFormat + `"`,
	}
}

// unixSeconds converts the index to the x values glot sends to gnuplot.
func unixSeconds(f *plotexp.Frame) []float64 {
	var xs = make([]float64, len(f.Index))
	for i, t := range f.Index {
		xs[i] = float64(t.Unix())
	}
	return xs
}

// Show opens a persistent gnuplot window with one line per series of f.
// Masked readings are sent as NaN and left out by gnuplot.
func Show(f *plotexp.Frame, title string) error {
	if len(f.Index) == 0 {
		return plotexp.ErrNoIndex
	}
	gp, err := glot.NewPlot(2, true, false)
	if err != nil {
		return errors.Wrap(err, "cannot start gnuplot")
	}
	for _, cmd := range axisCommands() {
		if err = gp.Cmd("%s", cmd); err != nil {
			return errors.Wrapf(err, "gnuplot %q", cmd)
		}
	}
	if title != "" {
		if err = gp.SetTitle(title); err != nil {
			return errors.Wrap(err, "cannot set title")
		}
	}
	if err = gp.SetXLabel("time"); err != nil {
		return errors.Wrap(err, "cannot set label")
	}
	var xs = unixSeconds(f)
	for _, name := range f.Series() {
		if err = gp.AddPointGroup(name, "lines", [][]float64{xs, f.Column(name)}); err != nil {
			return errors.Wrapf(err, "cannot plot %s", name)
		}
	}
	return nil
}
