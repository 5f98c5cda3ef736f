package report

import (
	"bytes"
	"testing"

	"github.com/NotCoffee418/gas_usage_estimator/pkg/estimator"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/fitter"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/reference"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/scaler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEstimate(t *testing.T) *estimator.Estimate {
	t.Helper()
	ds, err := reference.Load(reference.SourceDIN, 0)
	require.NoError(t, err)
	est := &estimator.Estimate{
		Dataset:        ds,
		Fit:            &fitter.Result{Status: fitter.CostTolerance, Iterations: 7, SquaredResiduals: 1.5e-5},
		YearlyIntegral: 0.999812,
		Scaling: &scaler.Result{
			Intervals: []scaler.Interval{
				{StartDay: 3, EndDay: 77, UsageDelta: 456.5, Factor: 1180.4},
				{StartDay: 77, EndDay: 182, UsageDelta: 222, Factor: 1260.2},
			},
			Factors: []float64{1180.4, 1260.2},
			Mean:    1220.3,
			StdDev:  39.9,
		},
	}
	est.FittedShares = ds.Shares
	return est
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleEstimate(t), false))

	out := buf.String()
	assert.Contains(t, out, "Reference data: DIN")
	assert.Contains(t, out, "Fitted average gas usage (unit depends on input data): 1220 ± 40")
	assert.NotContains(t, out, "Original Share")
}

func TestWriteVerbose(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleEstimate(t), true))

	out := buf.String()
	assert.Contains(t, out, "Original Share")
	assert.Contains(t, out, "0.170000")
	assert.Contains(t, out, "Fit status: cost_tolerance after 7 iterations")
	assert.Contains(t, out, "Remaining squared residuals: 1.5e-05")
	assert.Contains(t, out, "Yearly integral of fitted function: 0.999812")
	assert.Contains(t, out, "1260")
	assert.Contains(t, out, "1220 ± 40")
}
