// Package estimator runs the whole estimation: fit the seasonal model to a
// reference dataset, then scale it to the user's meter readings.
package estimator

import (
	"fmt"
	"time"

	"github.com/NotCoffee418/gas_usage_estimator/pkg/fitter"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/reference"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/scaler"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/seasonal"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/types"
	log "github.com/sirupsen/logrus"
)

type Options struct {
	Calendar seasonal.Calendar
	Fit      *fitter.Settings
}

func DefaultOptions() Options {
	return Options{
		Calendar: seasonal.NonLeapYear,
		Fit:      fitter.DefaultSettings(),
	}
}

// Estimate is everything a report needs about one run.
type Estimate struct {
	Dataset        reference.Dataset
	Fit            *fitter.Result
	FittedShares   [seasonal.MonthsPerYear]float64
	YearlyIntegral float64
	Readings       []types.UsageReading
	Scaling        *scaler.Result
	FitDuration    time.Duration
}

// FitDataset fits the seasonal model to the dataset's shares. A fit that did
// not converge is logged and returned anyway.
func FitDataset(ds reference.Dataset, opts Options) (*fitter.Result, error) {
	result, err := fitter.Fit(ds.Shares, opts.Calendar, opts.Fit)
	if err != nil {
		return nil, fmt.Errorf("fitting %s: %w", ds, err)
	}

	entry := log.WithFields(log.Fields{
		"dataset":           ds.String(),
		"status":            result.Status.String(),
		"iterations":        result.Iterations,
		"squared_residuals": result.SquaredResiduals,
	})
	if !result.Converged {
		entry.Warn("Seasonal model fit did not converge, using best effort coefficients")
	} else {
		entry.Debug("Fitted seasonal model")
	}
	return result, nil
}

// Run fits the dataset and scales the model to the readings.
func Run(ds reference.Dataset, dated []types.DatedReading, opts Options) (*Estimate, error) {
	started := time.Now()
	fit, err := FitDataset(ds, opts)
	if err != nil {
		return nil, err
	}
	est, err := RunWithFit(ds, fit, dated)
	if err != nil {
		return nil, err
	}
	est.FitDuration = time.Since(started)
	return est, nil
}

// RunWithFit scales an already fitted model, e.g. one loaded from storage.
func RunWithFit(ds reference.Dataset, fit *fitter.Result, dated []types.DatedReading) (*Estimate, error) {
	model := fit.Model
	readings := types.ToUsageReadings(dated, model.Calendar.DaysPerYear())
	if len(readings) < len(dated) {
		log.Warnf("Dropped %d readings that fell on an already used day", len(dated)-len(readings))
	}

	shares, err := fitter.FittedShares(model)
	if err != nil {
		return nil, err
	}
	yearly, err := fitter.YearlyIntegral(model)
	if err != nil {
		return nil, err
	}

	scaling, err := scaler.Scale(model, readings)
	if err != nil {
		return nil, fmt.Errorf("scaling model to readings: %w", err)
	}

	log.WithFields(log.Fields{
		"dataset":   ds.String(),
		"intervals": len(scaling.Factors),
		"mean":      scaling.Mean,
		"std_dev":   scaling.StdDev,
	}).Info("Estimated yearly gas usage")

	return &Estimate{
		Dataset:        ds,
		Fit:            fit,
		FittedShares:   shares,
		YearlyIntegral: yearly,
		Readings:       readings,
		Scaling:        scaling,
	}, nil
}
