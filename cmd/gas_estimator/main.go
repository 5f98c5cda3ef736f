// Gas estimator fits the seasonal usage model to reference data and scales it
// to the user's meter readings to estimate the yearly gas usage.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/NotCoffee418/gas_usage_estimator/pkg/config"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/estimator"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/fitter"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/logging"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/meterdb"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/pathing"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/reference"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/report"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/types"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/usagefile"
	log "github.com/sirupsen/logrus"
)

type options struct {
	readingsFile  string
	source        string
	year          int
	days          int
	maxIterations int
	save          bool
	verbose       bool
	logLevel      string
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

// parseOptions reads the flags with the estimator config as defaults.
func parseOptions(args []string, cfg *config.EstimatorConfig, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("gas_estimator", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.readingsFile, "readings", cfg.ReadingsFile, "file with \"YYYY-MM-DD <usage>\" lines, empty reads the meter database")
	fs.StringVar(&opts.source, "source", cfg.ReferenceSource, "reference data: DIN or HISTORIC")
	fs.IntVar(&opts.year, "year", cfg.ReferenceYear, "year of the HISTORIC reference data")
	fs.IntVar(&opts.days, "days", 2*365, "days of meter database snapshots to use")
	fs.IntVar(&opts.maxIterations, "max-iterations", cfg.MaxIterations, "iteration limit of the curve fit")
	fs.BoolVar(&opts.save, "save", false, "store the fitted model in the meter database")
	fs.BoolVar(&opts.verbose, "v", false, "print fit diagnostics and every reading interval")
	fs.StringVar(&opts.logLevel, "log-level", cfg.LogLevel, "log level")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return opts, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	if err := os.MkdirAll(pathing.GetConfigDir(), 0755); err != nil {
		return err
	}
	if err := config.LoadEstimatorConfig(); err != nil {
		return fmt.Errorf("loading estimator config: %w", err)
	}
	opts, err := parseOptions(args, config.ActiveEstimatorConfig, stderr)
	if err != nil {
		return err
	}
	if err := logging.Setup(opts.logLevel, stderr); err != nil {
		return err
	}

	source, err := reference.ParseSource(opts.source)
	if err != nil {
		return err
	}
	dataset, err := reference.Load(source, opts.year)
	if err != nil {
		return err
	}

	useDB := opts.readingsFile == "" || opts.save
	if useDB {
		if err := pathing.EnsureDirectories(); err != nil {
			return err
		}
		meterdb.InitializeDatabase()
	}

	readings, err := loadReadings(opts)
	if err != nil {
		return err
	}
	log.Printf("Loaded %d meter readings", len(readings))

	estimatorOpts := estimator.DefaultOptions()
	estimatorOpts.Fit = &fitter.Settings{MaxIterations: opts.maxIterations}
	est, err := estimator.Run(dataset, readings, estimatorOpts)
	if err != nil {
		return err
	}

	if opts.save {
		record := meterdb.NewFittedModelRecord(string(dataset.Source), dataset.Year, est.Fit, time.Now())
		id, err := meterdb.InsertFittedModel(record)
		if err != nil {
			return fmt.Errorf("storing fitted model: %w", err)
		}
		log.Printf("Stored fitted model %d for %s", id, dataset)
	}

	return report.Write(stdout, est, opts.verbose)
}

func loadReadings(opts *options) ([]types.DatedReading, error) {
	if opts.readingsFile != "" {
		return usagefile.ReadFile(opts.readingsFile)
	}
	to := time.Now().UTC()
	return meterdb.GetDailyGasReadings(to.AddDate(0, 0, -opts.days), to)
}
