package meterdb

import (
	"database/sql"
	"errors"
	"time"

	"github.com/NotCoffee418/gas_usage_estimator/pkg/types"
)

func InsertTotalGasReading(reading *MeterDbTotalGasReading) error {
	db := GetDB()

	_, err := db.NamedExec(
		"INSERT INTO total_gas_readings "+
			"(timestamp, consumption_dm3) "+
			"VALUES (:timestamp, :consumption_dm3)",
		reading,
	)
	return err
}

// GetLatestTotalGasReading returns nil when nothing was stored yet.
func GetLatestTotalGasReading() (*MeterDbTotalGasReading, error) {
	db := GetDB()

	var reading MeterDbTotalGasReading
	err := db.Get(&reading,
		"SELECT timestamp, consumption_dm3 FROM total_gas_readings ORDER BY timestamp DESC LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

// GetLastTotalGasReadingBetween returns the last reading within [from, to],
// or nil when there is none.
func GetLastTotalGasReadingBetween(from, to int64) (*MeterDbTotalGasReading, error) {
	db := GetDB()

	var reading MeterDbTotalGasReading
	err := db.Get(&reading, `
		SELECT timestamp, consumption_dm3
		FROM total_gas_readings
		WHERE timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp DESC
		LIMIT 1
	`, from, to)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

func DeleteTotalGasReadingsBefore(timestamp int64) (int64, error) {
	db := GetDB()

	res, err := db.Exec("DELETE FROM total_gas_readings WHERE timestamp < ?", timestamp)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func UpsertGasSnapshotDaily(snapshot *SnapshotTotalGasDaily) error {
	db := GetDB()

	_, err := db.NamedExec(
		"INSERT OR REPLACE INTO snapshot_total_gas_daily "+
			"(day_start, dm3_standing) "+
			"VALUES (:day_start, :dm3_standing)",
		snapshot,
	)
	return err
}

// GetGasSnapshotsDaily returns the snapshots within [from, to] by day.
func GetGasSnapshotsDaily(from, to int64) ([]SnapshotTotalGasDaily, error) {
	db := GetDB()

	snapshots := []SnapshotTotalGasDaily{}
	err := db.Select(&snapshots, `
		SELECT day_start, dm3_standing
		FROM snapshot_total_gas_daily
		WHERE day_start >= ? AND day_start <= ?
		ORDER BY day_start
	`, from, to)
	return snapshots, err
}

// GetDailyGasReadings returns the daily snapshots within [from, to] as m³
// standings for the estimator.
func GetDailyGasReadings(from, to time.Time) ([]types.DatedReading, error) {
	snapshots, err := GetGasSnapshotsDaily(from.Unix(), to.Unix())
	if err != nil {
		return nil, err
	}
	return ToDatedReadings(snapshots), nil
}

// GetLatestGasSnapshotDay returns 0 when no snapshot exists.
func GetLatestGasSnapshotDay() (int64, error) {
	db := GetDB()

	var dayStart sql.NullInt64
	if err := db.Get(&dayStart, "SELECT MAX(day_start) FROM snapshot_total_gas_daily"); err != nil {
		return 0, err
	}
	return dayStart.Int64, nil
}

func InsertFittedModel(record *FittedModelRecord) (int64, error) {
	db := GetDB()

	res, err := db.NamedExec(`
		INSERT INTO fitted_models
		(source, year, s1, s2, s3, s4, c1, c2, c3, c4, offset_value, cost, status, created_at)
		VALUES
		(:source, :year, :s1, :s2, :s3, :s4, :c1, :c2, :c3, :c4, :offset_value, :cost, :status, :created_at)
	`, record)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetLatestFittedModel returns nil when no model was stored for the dataset.
func GetLatestFittedModel(source string, year int) (*FittedModelRecord, error) {
	db := GetDB()

	var record FittedModelRecord
	err := db.Get(&record, `
		SELECT * FROM fitted_models
		WHERE source = ? AND year = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, source, year)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}
