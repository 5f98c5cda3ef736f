package interpreter

import (
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"
)

// RawGasReading is the gas part of one P1 telegram as sent over the websocket.
type RawGasReading struct {
	Timestamp        string  `json:"timestamp"`     // Telegram time, RFC3339
	GasTimestamp     string  `json:"gas_timestamp"` // Time the gas meter last reported, RFC3339
	GasConsumptionM3 float64 `json:"gas_consumption_m3"`
	SwitchGas        int     `json:"switch_gas"`
	MeterSerialGas   string  `json:"meter_serial_gas"`
}

// GasTime returns the time the gas standing was measured, falling back to
// the telegram time.
func (r *RawGasReading) GasTime() (time.Time, error) {
	if r.GasTimestamp != "" {
		return time.Parse(time.RFC3339, r.GasTimestamp)
	}
	return time.Parse(time.RFC3339, r.Timestamp)
}

func (r *RawGasReading) ToJsonBytes() ([]byte, error) {
	return json.Marshal(r)
}

func GasReadingFromJsonBytes(data []byte) *RawGasReading {
	var reading RawGasReading
	if err := json.Unmarshal(data, &reading); err != nil {
		log.Printf("Failed to unmarshal gas reading: %v", err)
		return nil
	}
	return &reading
}
