// Interpreter API is responsible for reading the P1 port and broadcasting the gas readings.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/NotCoffee418/gas_usage_estimator/pkg/config"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/interpreter"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/logging"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/meterdb"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/metrics"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/pathing"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/port_reader"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/reference"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := pathing.EnsureDirectories(); err != nil {
		log.Fatalf("Failed to create directories: %v", err)
	}

	// Load config
	if err := config.LoadInterpreterAPIConfig(); err != nil {
		log.Fatalf("Failed to load interpreter API config: %v", err)
	}
	cfg := config.ActiveInterpreterAPIConfig
	if err := logging.Setup(cfg.LogLevel, os.Stderr); err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}

	source, err := reference.ParseSource(cfg.ReferenceSource)
	if err != nil {
		log.Fatalf("Invalid reference source: %v", err)
	}
	dataset, err := reference.Load(source, cfg.ReferenceYear)
	if err != nil {
		log.Fatalf("Failed to load reference data: %v", err)
	}

	// /estimate reads the snapshots written by meter_collector
	meterdb.InitializeDatabase()

	collector := metrics.NewCollector("gas_usage_estimator", prometheus.DefaultRegisterer)

	// Start P1 reader
	p1Reader := port_reader.NewP1Reader(cfg.SerialDevice, cfg.Baudrate)
	p1Reader.OnTelegram(collector.RecordTelegram)

	srv := newServer(p1Reader, collector, prometheus.DefaultGatherer, dataset)

	// Start reading P1 port and handle signals/errors
	p1Reader.StartReading(
		func(reading *interpreter.RawGasReading) {
			collector.RecordGasReading(reading)
			srv.broadcast(reading)
		},
		func(err error) {
			if err != nil {
				log.Fatalf("Error reading P1 port: %v", err)
			}
		},
	)

	listener := fmt.Sprintf("%s:%d", cfg.ListenAddress, cfg.ListenPort)

	log.Printf("Starting Gas Usage Estimator Interpreter API on %s", listener)
	log.Fatal(http.ListenAndServe(listener, srv.routes()))
}
