package meterdb

import (
	"testing"
	"time"

	"github.com/NotCoffee418/gas_usage_estimator/pkg/fitter"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/seasonal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useMemoryDB(t *testing.T) {
	t.Helper()
	conn, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	UseDB(conn)
}

func TestUpSection(t *testing.T) {
	assert.Equal(t, "\nCREATE TABLE a (x INTEGER);\n\n",
		upSection("-- +up\nCREATE TABLE a (x INTEGER);\n\n-- +down\nDROP TABLE a;\n"))
}

func TestTotalGasReadings(t *testing.T) {
	useMemoryDB(t)

	latest, err := GetLatestTotalGasReading()
	require.NoError(t, err)
	assert.Nil(t, latest)

	for _, r := range []MeterDbTotalGasReading{
		{Timestamp: 100, TotalConsumptionDM3: 5000},
		{Timestamp: 200, TotalConsumptionDM3: 5010},
		{Timestamp: 300, TotalConsumptionDM3: 5025},
	} {
		require.NoError(t, InsertTotalGasReading(&r))
	}

	latest, err = GetLatestTotalGasReading()
	require.NoError(t, err)
	assert.Equal(t, &MeterDbTotalGasReading{Timestamp: 300, TotalConsumptionDM3: 5025}, latest)

	between, err := GetLastTotalGasReadingBetween(100, 250)
	require.NoError(t, err)
	assert.Equal(t, uint32(5010), between.TotalConsumptionDM3)

	none, err := GetLastTotalGasReadingBetween(400, 500)
	require.NoError(t, err)
	assert.Nil(t, none)

	deleted, err := DeleteTotalGasReadingsBefore(250)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func TestGasSnapshotsDaily(t *testing.T) {
	useMemoryDB(t)

	day, err := GetLatestGasSnapshotDay()
	require.NoError(t, err)
	assert.Zero(t, day)

	require.NoError(t, UpsertGasSnapshotDaily(&SnapshotTotalGasDaily{DayStart: 86400 * 2, Dm3Standing: 1200}))
	require.NoError(t, UpsertGasSnapshotDaily(&SnapshotTotalGasDaily{DayStart: 86400, Dm3Standing: 1000}))
	require.NoError(t, UpsertGasSnapshotDaily(&SnapshotTotalGasDaily{DayStart: 86400, Dm3Standing: 1100}))

	snapshots, err := GetGasSnapshotsDaily(0, 86400*10)
	require.NoError(t, err)
	assert.Equal(t, []SnapshotTotalGasDaily{
		{DayStart: 86400, Dm3Standing: 1100},
		{DayStart: 86400 * 2, Dm3Standing: 1200},
	}, snapshots)

	day, err = GetLatestGasSnapshotDay()
	require.NoError(t, err)
	assert.Equal(t, int64(86400*2), day)

	dated, err := GetDailyGasReadings(time.Unix(0, 0), time.Unix(86400*10, 0))
	require.NoError(t, err)
	require.Len(t, dated, 2)
	assert.Equal(t, time.Date(1970, time.January, 2, 0, 0, 0, 0, time.UTC), dated[0].Date)
	assert.InDelta(t, 1.1, dated[0].Usage, 1e-9)
}

func TestFittedModels(t *testing.T) {
	useMemoryDB(t)

	missing, err := GetLatestFittedModel("DIN", 0)
	require.NoError(t, err)
	assert.Nil(t, missing)

	coefficients := seasonal.Coefficients{
		Sin:    [seasonal.Harmonics]float64{0.1, 0.2, 0.3, 0.4},
		Cos:    [seasonal.Harmonics]float64{-0.1, -0.2, -0.3, -0.4},
		Offset: 0.0027,
	}
	result := &fitter.Result{Coefficients: coefficients, Cost: 1e-6, Status: fitter.CostTolerance}

	first := NewFittedModelRecord("DIN", 0, result, time.Unix(1000, 0))
	_, err = InsertFittedModel(first)
	require.NoError(t, err)

	result.Coefficients.Offset = 0.003
	second := NewFittedModelRecord("DIN", 0, result, time.Unix(2000, 0))
	id, err := InsertFittedModel(second)
	require.NoError(t, err)

	latest, err := GetLatestFittedModel("DIN", 0)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, id, latest.ID)
	assert.Equal(t, "cost_tolerance", latest.Status)
	assert.Equal(t, int64(2000), latest.CreatedAt)
	assert.Equal(t, 0.003, latest.Coefficients().Offset)
	assert.Equal(t, coefficients.Sin, latest.Coefficients().Sin)
	assert.Equal(t, coefficients.Cos, latest.Coefficients().Cos)

	restored := latest.ToResult(seasonal.NonLeapYear)
	assert.Equal(t, fitter.CostTolerance, restored.Status)
	assert.True(t, restored.Converged)
	assert.Equal(t, 2e-6, restored.SquaredResiduals)
	assert.Equal(t, latest.Coefficients(), restored.Model.Coefficients)

	other, err := GetLatestFittedModel("HISTORIC", 2024)
	require.NoError(t, err)
	assert.Nil(t, other)
}
