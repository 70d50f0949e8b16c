// Package omniapp runs the OMNI2 pipeline of the omniplot command: load,
// index, report, then display or render the series.
package omniapp

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/dati-mipt/plotexp"
	"github.com/dati-mipt/plotexp/internal/config"
)

// ShowFunc displays an indexed frame in a window and returns once it is open.
type ShowFunc func(f *plotexp.Frame, title string) error

// Run loads oc.Input and prints its table and diagnostics to stdout. The
// series are then passed to show when oc.Show is set and written as PNGs
// into oc.OutDir when oc.PNG is set.
func Run(oc config.OMNIConfig, log logrus.FieldLogger, stdout io.Writer, show ShowFunc) error {
	if !oc.Show && !oc.PNG {
		log.Warn("neither show nor png is set, only the table is printed")
	}
	var frame *plotexp.Frame
	err := plotexp.Stage(log, "load", func() error {
		rc, err := plotexp.OpenInput(oc.Input)
		if err != nil {
			return err
		}
		defer rc.Close()
		frame, err = plotexp.ReadOMNI(rc)
		return err
	})
	if err != nil {
		return err
	}
	var rows, _ = frame.Shape()

	if err = plotexp.Stage(log, "index", frame.DeriveIndex); err != nil {
		return err
	}
	if err = plotexp.CheckIndex(frame.Index); err != nil {
		// plots of an unordered index are still drawn, just misleading
		log.WithError(err).Warn("index is not strictly increasing")
	}
	if n, _ := frame.Shape(); n != rows {
		log.WithFields(logrus.Fields{"before": rows, "after": n}).Warn("row count changed while indexing")
	}
	if oc.MaskFill {
		log.WithField("values", frame.MaskFill()).Info("fill values masked")
	}

	if err = frame.WriteTable(stdout); err != nil {
		return err
	}
	diag, err := frame.Diagnose()
	if err != nil {
		return err
	}
	fmt.Fprint(stdout, diag)

	if oc.Export != "" {
		err = plotexp.Stage(log, "export", func() error {
			return plotexp.SaveFile(oc.Export, frame.WriteCSV)
		})
		if err != nil {
			return err
		}
	}
	if oc.PNG {
		if err = renderPNGs(oc, frame, log); err != nil {
			return err
		}
	}
	if oc.Show {
		if err = show(frame, oc.Title); err != nil {
			log.WithError(err).Error("cannot show interactive plot")
			return err
		}
	}
	return nil
}

// Exit runs Run and turns its result into a process exit code, logging the
// failure first.
func Exit(oc config.OMNIConfig, log logrus.FieldLogger, stdout io.Writer, show ShowFunc) int {
	if err := Run(oc, log, stdout, show); err != nil {
		log.WithError(err).Error("omniplot failed")
		return 1
	}
	return 0
}

// Charts names the PNG files written into the output directory.
var Charts = []string{"omni.png", "omni_subplots.png"}

func renderPNGs(oc config.OMNIConfig, frame *plotexp.Frame, log logrus.FieldLogger) error {
	if err := os.MkdirAll(oc.OutDir, 0755); err != nil {
		log.WithError(err).Error("cannot create output directory")
		return errors.Wrap(err, "cannot create output directory")
	}
	var overlay, subplots = plotexp.OverlayChart, plotexp.SubplotChart
	overlay.Title, subplots.Title = oc.Title, oc.Title
	var renders = []func(io.Writer) error{
		func(w io.Writer) error { return plotexp.RenderOverlay(w, frame, overlay) },
		func(w io.Writer) error { return plotexp.RenderSubplots(w, frame, subplots) },
	}
	for i, name := range Charts {
		var path, render = filepath.Join(oc.OutDir, name), renders[i]
		if err := plotexp.Stage(log, "render "+name, func() error { return plotexp.SaveFile(path, render) }); err != nil {
			return err
		}
	}
	return nil
}
