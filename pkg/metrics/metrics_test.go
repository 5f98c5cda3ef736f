package metrics

import (
	"testing"
	"time"

	"github.com/NotCoffee418/gas_usage_estimator/pkg/estimator"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/fitter"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/interpreter"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/port_reader"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/scaler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTelegram(t *testing.T) {
	c := NewCollector("test", prometheus.NewRegistry())

	c.RecordTelegram(port_reader.TelegramValid)
	c.RecordTelegram(port_reader.TelegramValid)
	c.RecordTelegram(port_reader.TelegramInvalidCRC)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.TelegramsTotal.WithLabelValues("valid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.TelegramsTotal.WithLabelValues("invalid_crc")))
}

func TestRecordGasReading(t *testing.T) {
	c := NewCollector("test", prometheus.NewRegistry())

	c.RecordGasReading(&interpreter.RawGasReading{
		Timestamp:        "2024-03-05T09:15:02Z",
		GasTimestamp:     "2024-03-05T09:10:00Z",
		GasConsumptionM3: 1234.567,
	})
	assert.Equal(t, 1234.567, testutil.ToFloat64(c.GasStandingM3))
	assert.Equal(t, float64(time.Date(2024, time.March, 5, 9, 10, 0, 0, time.UTC).Unix()), testutil.ToFloat64(c.GasReadingTime))
}

func TestRecordEstimate(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector("test", reg)

	c.RecordEstimate(&estimator.Estimate{
		Fit:     &fitter.Result{Cost: 2e-6, Converged: true},
		Scaling: &scaler.Result{Mean: 1220, StdDev: 40},
	}, 25*time.Millisecond)
	c.RecordEstimateError()

	assert.Equal(t, 1220.0, testutil.ToFloat64(c.EstimatedYearlyUsage))
	assert.Equal(t, 40.0, testutil.ToFloat64(c.EstimatedYearlyStdDev))
	assert.Equal(t, 2e-6, testutil.ToFloat64(c.FitCost))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.EstimationsTotal.WithLabelValues("converged")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.EstimationsTotal.WithLabelValues("error")))

	count, err := testutil.GatherAndCount(reg, "test_seasonal_fit_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCollectorsAreIndependent(t *testing.T) {
	// Separate registries allow several collectors with one namespace
	assert.NotPanics(t, func() {
		NewCollector("test", prometheus.NewRegistry())
		NewCollector("test", prometheus.NewRegistry())
	})
}
