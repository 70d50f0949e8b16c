// Command waterfall charts lock requests as a horizontal "transaction
// waterfall" and saves it as a PNG.
package main

import (
	"context"
	"flag"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot/vg"

	"github.com/dati-mipt/plotexp"
	"github.com/dati-mipt/plotexp/internal/config"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file")
		source     = flag.String("source", "", "builtin | csv | mysql")
		input      = flag.String("input", "", "transactions CSV file (source=csv)")
		dsn        = flag.String("dsn", "", "MySQL DSN, accepts table= and queryTimeout= params (source=mysql)")
		limit      = flag.Int("limit", 0, "maximum transactions to load from mysql, 0 for all")
		out        = flag.String("out", "", "output PNG path")
		title      = flag.String("title", "", "chart title")
		amounts    = flag.Bool("amounts", false, "render the sales amount waterfall instead of transactions")
	)
	flag.Parse()

	var log = logrus.New()
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("cannot load config")
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "source":
			cfg.Waterfall.Source = *source
		case "input":
			cfg.Waterfall.Input = *input
		case "dsn":
			cfg.Waterfall.DSN = *dsn
		case "limit":
			cfg.Waterfall.Limit = *limit
		case "out":
			cfg.Waterfall.Output = *out
		case "title":
			cfg.Waterfall.Title = *title
		}
	})
	if err = cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid flags")
	}
	if log, err = config.NewLogger(cfg.Logging, os.Stderr); err != nil {
		logrus.WithError(err).Fatal("cannot create logger")
	}

	var wc = cfg.Waterfall
	var opts = plotexp.WaterfallChart
	opts.Title, opts.DPI = wc.Title, wc.DPI

	if *amounts {
		if *title == "" && cfg.Waterfall.Title == config.Default().Waterfall.Title {
			opts.Title = "2014 Sales Waterfall"
		}
		opts.Width = 10 * vg.Inch
		opts.Height = 5 * vg.Inch
		err = plotexp.Stage(log, "render", func() error {
			return plotexp.SaveFile(wc.Output, func(w io.Writer) error {
				return plotexp.RenderAmountWaterfall(w, plotexp.SalesWaterfall(), opts)
			})
		})
		if err != nil {
			os.Exit(1)
		}
		log.WithField("path", wc.Output).Info("waterfall written")
		return
	}

	var txs []plotexp.Transaction
	err = plotexp.Stage(log, "load", func() error {
		var err error
		txs, err = loadTransactions(wc, log)
		return err
	})
	if err != nil {
		os.Exit(1)
	}

	table, err := plotexp.NewTransactionTable(txs, nil)
	if err != nil {
		log.WithError(err).Fatal("cannot build transaction table")
	}
	for _, r := range table {
		log.WithFields(logrus.Fields{
			"row":   r.Name,
			"tid":   r.Tx.ID,
			"lock":  r.Tx.Lock,
			"start": r.Start.Format("15:04:05.000"),
		}).Info("transaction")
	}
	bars, err := plotexp.TransactionWaterfall(table)
	if err != nil {
		log.WithError(err).Fatal("cannot lay out waterfall")
	}

	err = plotexp.Stage(log, "render", func() error {
		return plotexp.SaveFile(wc.Output, func(w io.Writer) error {
			return plotexp.RenderWaterfall(w, bars, opts)
		})
	})
	if err != nil {
		os.Exit(1)
	}
	log.WithFields(logrus.Fields{"path": wc.Output, "rows": len(table)}).Info("waterfall written")
}

func loadTransactions(wc config.WaterfallConfig, log logrus.FieldLogger) ([]plotexp.Transaction, error) {
	switch wc.Source {
	case "csv":
		rc, err := plotexp.OpenInput(wc.Input)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return plotexp.ReadTransactionsCSV(rc)
	case "mysql":
		ctx, cancel := context.WithTimeout(context.Background(), wc.Timeout)
		defer cancel()
		store, err := plotexp.OpenStore(ctx, wc.DSN, log)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Transactions(ctx, wc.Limit)
	case "builtin":
		return plotexp.BuiltinTransactions(), nil
	}
	return nil, errors.Errorf("unknown source %q", wc.Source)
}
