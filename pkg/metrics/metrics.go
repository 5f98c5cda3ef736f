package metrics

import (
	"time"

	"github.com/NotCoffee418/gas_usage_estimator/pkg/estimator"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/interpreter"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/port_reader"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector provides application metrics collection
type Collector struct {
	// Meter Metrics
	TelegramsTotal   *prometheus.CounterVec
	GasStandingM3    prometheus.Gauge
	GasReadingTime   prometheus.Gauge
	WebsocketClients prometheus.Gauge

	// Estimation Metrics
	EstimatedYearlyUsage  prometheus.Gauge
	EstimatedYearlyStdDev prometheus.Gauge
	FitCost               prometheus.Gauge
	FitDuration           prometheus.Histogram
	EstimationsTotal      *prometheus.CounterVec
}

// NewCollector creates a new metrics collector registered with reg.
// Pass prometheus.DefaultRegisterer to expose it through promhttp.Handler.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		TelegramsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "p1_telegrams_total",
				Help:      "Total number of P1 telegrams received by parse result",
			},
			[]string{"result"},
		),

		GasStandingM3: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "gas_standing_cubic_meters",
				Help:      "Latest cumulative gas meter standing",
			},
		),

		GasReadingTime: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "gas_reading_timestamp_seconds",
				Help:      "Unix time the latest gas standing was measured",
			},
		),

		WebsocketClients: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "websocket_clients",
				Help:      "Number of connected websocket clients",
			},
		),

		EstimatedYearlyUsage: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "estimated_yearly_usage",
				Help:      "Latest estimated yearly gas usage, mean of all reading intervals",
			},
		),

		EstimatedYearlyStdDev: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "estimated_yearly_usage_stddev",
				Help:      "Standard deviation of the yearly usage guesses",
			},
		),

		FitCost: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "seasonal_fit_cost",
				Help:      "Sum of squared residuals of the latest seasonal model fit",
			},
		),

		FitDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "seasonal_fit_duration_seconds",
				Help:      "Duration of fitting and scaling the seasonal model",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1.0},
			},
		),

		EstimationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "estimations_total",
				Help:      "Total number of estimation runs by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// RecordTelegram increments the telegram counter
func (c *Collector) RecordTelegram(result port_reader.TelegramResult) {
	c.TelegramsTotal.WithLabelValues(string(result)).Inc()
}

// RecordGasReading updates the standing gauges. Readings with an unparsable
// time only update the standing.
func (c *Collector) RecordGasReading(reading *interpreter.RawGasReading) {
	c.GasStandingM3.Set(reading.GasConsumptionM3)
	if at, err := reading.GasTime(); err == nil {
		c.GasReadingTime.Set(float64(at.Unix()))
	}
}

// RecordEstimate publishes the outcome of an estimation run
func (c *Collector) RecordEstimate(est *estimator.Estimate, duration time.Duration) {
	c.EstimatedYearlyUsage.Set(est.Scaling.Mean)
	c.EstimatedYearlyStdDev.Set(est.Scaling.StdDev)
	c.FitCost.Set(est.Fit.Cost)
	c.FitDuration.Observe(duration.Seconds())

	outcome := "converged"
	if !est.Fit.Converged {
		outcome = "not_converged"
	}
	c.EstimationsTotal.WithLabelValues(outcome).Inc()
}

// RecordEstimateError counts a failed estimation run
func (c *Collector) RecordEstimateError() {
	c.EstimationsTotal.WithLabelValues("error").Inc()
}
