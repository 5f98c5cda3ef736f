package main

import (
	"sync"

	"github.com/NotCoffee418/gas_usage_estimator/pkg/esmutils"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/interpreter"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/meterdb"
	log "github.com/sirupsen/logrus"
)

// gasRecorder stores a gas reading only when the standing changed.
// The gas meter reports every 5 minutes while telegrams arrive every second.
type gasRecorder struct {
	mu        sync.Mutex
	lastDM3   uint32
	lastKnown bool
}

func newGasRecorder() (*gasRecorder, error) {
	latest, err := meterdb.GetLatestTotalGasReading()
	if err != nil {
		return nil, err
	}
	r := &gasRecorder{}
	if latest != nil {
		r.lastDM3 = latest.TotalConsumptionDM3
		r.lastKnown = true
	}
	return r, nil
}

func (r *gasRecorder) record(reading *interpreter.RawGasReading) error {
	at, err := reading.GasTime()
	if err != nil {
		return err
	}
	dm3 := esmutils.M3ToDM3(reading.GasConsumptionM3)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lastKnown && dm3 == r.lastDM3 {
		return nil
	}
	if r.lastKnown && dm3 < r.lastDM3 {
		log.Warnf("Gas standing went down from %d to %d dm³, meter replaced?", r.lastDM3, dm3)
	}

	err = meterdb.InsertTotalGasReading(&meterdb.MeterDbTotalGasReading{
		Timestamp:           at.Unix(),
		TotalConsumptionDM3: dm3,
	})
	if err != nil {
		return err
	}
	r.lastDM3 = dm3
	r.lastKnown = true
	log.Debugf("Stored gas standing %d dm³ at %s", dm3, at.Format("2006-01-02 15:04:05"))
	return nil
}
