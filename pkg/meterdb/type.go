package meterdb

import (
	"time"

	"github.com/NotCoffee418/gas_usage_estimator/pkg/esmutils"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/fitter"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/seasonal"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/types"
)

type MeterDbTotalGasReading struct {
	Timestamp           int64  `db:"timestamp"`
	TotalConsumptionDM3 uint32 `db:"consumption_dm3"`
}

// Snapshot models - retained meter readings, one per UTC day
type SnapshotTotalGasDaily struct {
	DayStart    int64  `db:"day_start"`
	Dm3Standing uint32 `db:"dm3_standing"`
}

// ToDatedReadings converts snapshots to m³ standings for the estimator.
func ToDatedReadings(snapshots []SnapshotTotalGasDaily) []types.DatedReading {
	readings := make([]types.DatedReading, 0, len(snapshots))
	for _, s := range snapshots {
		readings = append(readings, types.DatedReading{
			Date:  time.Unix(s.DayStart, 0).UTC(),
			Usage: esmutils.DM3ToM3(s.Dm3Standing),
		})
	}
	return readings
}

type FittedModelRecord struct {
	ID        int64   `db:"id"`
	Source    string  `db:"source"`
	Year      int     `db:"year"`
	S1        float64 `db:"s1"`
	S2        float64 `db:"s2"`
	S3        float64 `db:"s3"`
	S4        float64 `db:"s4"`
	C1        float64 `db:"c1"`
	C2        float64 `db:"c2"`
	C3        float64 `db:"c3"`
	C4        float64 `db:"c4"`
	Offset    float64 `db:"offset_value"`
	Cost      float64 `db:"cost"`
	Status    string  `db:"status"`
	CreatedAt int64   `db:"created_at"`
}

func NewFittedModelRecord(source string, year int, result *fitter.Result, createdAt time.Time) *FittedModelRecord {
	c := result.Coefficients
	return &FittedModelRecord{
		Source:    source,
		Year:      year,
		S1:        c.Sin[0],
		S2:        c.Sin[1],
		S3:        c.Sin[2],
		S4:        c.Sin[3],
		C1:        c.Cos[0],
		C2:        c.Cos[1],
		C3:        c.Cos[2],
		C4:        c.Cos[3],
		Offset:    c.Offset,
		Cost:      result.Cost,
		Status:    result.Status.String(),
		CreatedAt: createdAt.Unix(),
	}
}

// ToResult restores a stored fit on the given calendar. Residual details
// are not stored and stay zero.
func (r *FittedModelRecord) ToResult(cal seasonal.Calendar) *fitter.Result {
	coefficients := r.Coefficients()
	status := fitter.ParseStatus(r.Status)
	return &fitter.Result{
		Coefficients:     coefficients,
		Model:            seasonal.NewModel(coefficients, cal),
		Status:           status,
		Converged:        status.Converged(),
		Cost:             r.Cost,
		SquaredResiduals: 2 * r.Cost,
	}
}

func (r *FittedModelRecord) Coefficients() seasonal.Coefficients {
	return seasonal.Coefficients{
		Sin:    [seasonal.Harmonics]float64{r.S1, r.S2, r.S3, r.S4},
		Cos:    [seasonal.Harmonics]float64{r.C1, r.C2, r.C3, r.C4},
		Offset: r.Offset,
	}
}
