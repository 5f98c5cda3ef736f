// Package fitter fits the seasonal model to monthly reference shares with a
// Levenberg-Marquardt least squares solver.
package fitter

import (
	"fmt"

	"github.com/NotCoffee418/gas_usage_estimator/pkg/seasonal"
	"gonum.org/v1/gonum/floats"
)

// Result of a fit. A fit that ran out of iterations is still returned;
// check Converged before trusting it blindly.
type Result struct {
	Coefficients     seasonal.Coefficients
	Model            seasonal.Model
	Status           Status
	Converged        bool
	Cost             float64
	SquaredResiduals float64
	Residuals        [seasonal.MonthsPerYear]float64
	Iterations       int
	Evaluations      int
}

// InitialGuess is where every fit starts: all amplitudes 1, no offset.
func InitialGuess() seasonal.Coefficients {
	var c seasonal.Coefficients
	for k := 0; k < seasonal.Harmonics; k++ {
		c.Sin[k] = 1
		c.Cos[k] = 1
	}
	return c
}

// Fit finds coefficients whose monthly integrals best match shares.
func Fit(shares seasonal.MonthlyShares, cal seasonal.Calendar, settings *Settings) (*Result, error) {
	return FitFrom(shares, cal, InitialGuess(), settings)
}

// FitFrom is Fit with an explicit starting point.
func FitFrom(shares seasonal.MonthlyShares, cal seasonal.Calendar, start seasonal.Coefficients, settings *Settings) (*Result, error) {
	if err := shares.Validate(); err != nil {
		return nil, err
	}
	// Probe the calendar once so the residual function cannot fail.
	if _, err := seasonal.IntegralOverMonth(func(float64) float64 { return 0 }, 0, cal); err != nil {
		return nil, err
	}

	residuals := func(dst, x []float64) {
		coefficients, _ := seasonal.CoefficientsFromVector(x)
		f := seasonal.NewModel(coefficients, cal).Func()
		for month := range shares {
			integral, _ := seasonal.IntegralOverMonth(f, month, cal)
			dst[month] = integral - shares[month]
		}
	}

	sol, err := levenbergMarquardt(residuals, seasonal.MonthsPerYear, start.Vector(), settings)
	if err != nil {
		return nil, fmt.Errorf("fitting seasonal model: %w", err)
	}

	coefficients, err := seasonal.CoefficientsFromVector(sol.x)
	if err != nil {
		return nil, err
	}
	result := &Result{
		Coefficients:     coefficients,
		Model:            seasonal.NewModel(coefficients, cal),
		Status:           sol.status,
		Converged:        sol.status.Converged(),
		Cost:             sol.cost,
		SquaredResiduals: floats.Dot(sol.residuals, sol.residuals),
		Iterations:       sol.iterations,
		Evaluations:      sol.evaluations,
	}
	copy(result.Residuals[:], sol.residuals)
	return result, nil
}

// FittedShares integrates the model over each month of its calendar.
func FittedShares(model seasonal.Model) ([seasonal.MonthsPerYear]float64, error) {
	var shares [seasonal.MonthsPerYear]float64
	for month := range shares {
		integral, err := seasonal.IntegralOverMonth(model.Func(), month, model.Calendar)
		if err != nil {
			return shares, err
		}
		shares[month] = integral
	}
	return shares, nil
}

// YearlyIntegral integrates the model over one full period.
func YearlyIntegral(model seasonal.Model) (float64, error) {
	return seasonal.CumulativeIntegralUpToMonth(model.Func(), seasonal.MonthsPerYear-1, model.Calendar)
}
