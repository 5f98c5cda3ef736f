// Responsible for storing the gas readings collected from the smart meter
// Depends on the interpreter API being online.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NotCoffee418/gas_usage_estimator/pkg/aggregator"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/config"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/interpreter"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/logging"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/meterdb"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/pathing"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := pathing.EnsureDirectories(); err != nil {
		log.Fatalf("Failed to create directories: %v", err)
	}

	if err := config.LoadMeterCollectorConfig(); err != nil {
		log.Fatalf("Failed to load meter collector config: %v", err)
	}
	cfg := config.ActiveMeterCollectorConfig
	if err := logging.Setup(cfg.LogLevel, os.Stderr); err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}

	// Initialize database
	meterdb.InitializeDatabase()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go runAggregator(ctx, cfg.RetentionDays)

	recorder, err := newGasRecorder()
	if err != nil {
		log.Fatalf("Failed to read latest gas reading: %v", err)
	}

	// Subscribe to websocket with revive
	interpreter.StartListener(ctx, cfg.InterpreterAPIHost, cfg.TLSEnabled, func(reading *interpreter.RawGasReading) {
		if err := recorder.record(reading); err != nil {
			log.Printf("Failed to store gas reading: %v", err)
		}
	})
}

// runAggregator snapshots and cleans up once on startup and then every hour.
func runAggregator(ctx context.Context, retentionDays int) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		if err := aggregator.SnapshotAndCleanup(time.Now(), retentionDays); err != nil {
			log.Printf("Aggregation failed: %v", err)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}
