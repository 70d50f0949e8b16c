// Command omniplot loads the OMNI2 hourly dataset, indexes it by time and
// plots the sunspot number, Dst and F10.7 series in a gnuplot window.
// Pass -png to also write the charts as PNG files; build with -tags headless
// for a binary without the gnuplot requirement.
package main

import (
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/dati-mipt/plotexp/internal/config"
	"github.com/dati-mipt/plotexp/internal/omniapp"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file")
		input      = flag.String("input", "", "OMNI2 data file (.dat, .dat.gz or .dat.zst)")
		outDir     = flag.String("out-dir", "", "directory for the rendered PNGs")
		maskFill   = flag.Bool("mask-fill", false, "treat OMNI2 fill values as missing")
		showWindow = flag.Bool("show", true, "open the series in an interactive gnuplot window")
		png        = flag.Bool("png", false, "write omni.png and omni_subplots.png into -out-dir")
		export     = flag.String("export", "", "write the indexed frame as CSV to this path")
	)
	flag.Parse()

	var log = logrus.New()
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("cannot load config")
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.OMNI.Input = *input
		case "out-dir":
			cfg.OMNI.OutDir = *outDir
		case "mask-fill":
			cfg.OMNI.MaskFill = *maskFill
		case "show":
			cfg.OMNI.Show = *showWindow
		case "png":
			cfg.OMNI.PNG = *png
		case "export":
			cfg.OMNI.Export = *export
		}
	})
	if err = cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid flags")
	}
	if log, err = config.NewLogger(cfg.Logging, os.Stderr); err != nil {
		logrus.WithError(err).Fatal("cannot create logger")
	}

	os.Exit(omniapp.Exit(cfg.OMNI, log, os.Stdout, show))
}
