package aggregator

import (
	"time"

	"github.com/NotCoffee418/gas_usage_estimator/pkg/meterdb"
	log "github.com/sirupsen/logrus"
)

// Days to look back for missed snapshots, e.g. after the collector was down
const maxBackfillDays = 31

// roundToDayStart returns the Unix timestamp of the start of the day for the given time
func roundToDayStart(t time.Time) int64 {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Unix()
}

// getDayEnd returns the Unix timestamp of the last second of the day (next day start - 1)
func getDayEnd(dayStart int64) int64 {
	return time.Unix(dayStart, 0).UTC().AddDate(0, 0, 1).Unix() - 1
}

// snapshotTotalGasDaily stores the last known gas standing of a day.
// Days without readings get no snapshot.
func snapshotTotalGasDaily(dayStart int64) (bool, error) {
	reading, err := meterdb.GetLastTotalGasReadingBetween(dayStart, getDayEnd(dayStart))
	if err != nil {
		return false, err
	}
	if reading == nil {
		return false, nil
	}

	err = meterdb.UpsertGasSnapshotDaily(&meterdb.SnapshotTotalGasDaily{
		DayStart:    dayStart,
		Dm3Standing: reading.TotalConsumptionDM3,
	})
	return err == nil, err
}

// cleanupOldData removes raw gas readings older than the retention window,
// but only once the days before the cutoff have been snapshotted.
func cleanupOldData(now time.Time, retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoffTimestamp := roundToDayStart(now.AddDate(0, 0, -retentionDays))

	lastSnapshotDay, err := meterdb.GetLatestGasSnapshotDay()
	if err != nil {
		return err
	}
	if lastSnapshotDay == 0 || lastSnapshotDay < cutoffTimestamp {
		return nil
	}

	deleted, err := meterdb.DeleteTotalGasReadingsBefore(cutoffTimestamp)
	if err != nil {
		return err
	}
	if deleted > 0 {
		log.Printf("Cleaned up %d gas readings older than %s",
			deleted, time.Unix(cutoffTimestamp, 0).UTC().Format(time.RFC3339))
	}
	return nil
}

// SnapshotAndCleanup snapshots every finished day since the last snapshot
// (at most maxBackfillDays back) and then removes expired raw readings.
// Safe to call every hour: snapshots of a day are replaced, not duplicated.
func SnapshotAndCleanup(now time.Time, retentionDays int) error {
	today := roundToDayStart(now)
	first := roundToDayStart(now.AddDate(0, 0, -maxBackfillDays))

	lastSnapshotDay, err := meterdb.GetLatestGasSnapshotDay()
	if err != nil {
		log.Printf("Error reading latest gas snapshot: %v", err)
		return err
	}
	if lastSnapshotDay > first {
		first = lastSnapshotDay
	}

	created := 0
	for dayStart := first; dayStart < today; dayStart = time.Unix(dayStart, 0).UTC().AddDate(0, 0, 1).Unix() {
		ok, err := snapshotTotalGasDaily(dayStart)
		if err != nil {
			log.Printf("Error creating gas snapshot for %s: %v",
				time.Unix(dayStart, 0).UTC().Format(time.DateOnly), err)
			return err
		}
		if ok {
			created++
		}
	}
	log.Debugf("Created %d daily gas snapshots", created)

	if err := cleanupOldData(now, retentionDays); err != nil {
		log.Printf("Error cleaning up old data: %v", err)
		return err
	}
	return nil
}
