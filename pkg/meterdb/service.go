// MeterDB contains the gas meter readings and fitted models.
// Due to cross-service communication on SQLite,
// any user data or anything else should use a seperate database.
// Readings should only be written to by meter_collector
// but can be read by any service.
package meterdb

import (
	"embed"
	"sync"

	"github.com/NotCoffee418/dbmigrator"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/pathing"
	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"

	_ "modernc.org/sqlite"
)

var (
	db   *sqlx.DB
	once sync.Once
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Initialize must be called manually on startup
func InitializeDatabase() {
	// Create DB before migrations
	db := GetDB()
	_, err := db.Exec("SELECT 1;")
	if err != nil {
		log.Printf("Warning: Could not create DB: %v", err)
	}

	// Apply migrations
	dbmigrator.SetDatabaseType(dbmigrator.SQLite)
	<-dbmigrator.MigrateUpCh(
		db.DB,
		migrationFS,
		"migrations",
	)
}

func GetDB() *sqlx.DB {
	once.Do(func() {
		var err error
		db, err = Open(pathing.GetMeterDbPath())
		if err != nil {
			log.Fatal(err)
		}
	})
	return db
}

// Open connects to the database file at path without migrating it.
func Open(path string) (*sqlx.DB, error) {
	conn, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Verify connection
	if err = conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// UseDB makes every access function use conn instead of the default file.
func UseDB(conn *sqlx.DB) {
	once.Do(func() {})
	db = conn
}
