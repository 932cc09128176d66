package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens/creates the SQLite DB file and ensures tables exist.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// Ingestion is a single writer; HTTP command handlers are the only other writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

const sqliteDriverName = "sqlite"

const schemaDevices = `
CREATE TABLE IF NOT EXISTS devices (
    id TEXT PRIMARY KEY,
    mac_address TEXT UNIQUE NOT NULL,
    name TEXT NOT NULL,
    location TEXT,
    is_online BOOLEAN NOT NULL DEFAULT 0,
    last_seen TIMESTAMP,
    firmware_version TEXT,
    created_at TIMESTAMP NOT NULL
);
`

const schemaDeviceConfigs = `
CREATE TABLE IF NOT EXISTS device_configs (
    device_id TEXT PRIMARY KEY REFERENCES devices(id) ON DELETE CASCADE,
    humidity_threshold_low INTEGER NOT NULL,
    humidity_threshold_high INTEGER NOT NULL,
    reservoir_alert_level INTEGER NOT NULL,
    watering_duration_sec INTEGER NOT NULL,
    watering_cooldown_min INTEGER NOT NULL,
    reading_interval_min INTEGER NOT NULL,
    auto_watering_enabled BOOLEAN NOT NULL DEFAULT 0,
    night_mode_start INTEGER NOT NULL,
    night_mode_end INTEGER NOT NULL,
    CHECK (humidity_threshold_low < humidity_threshold_high)
);
`

const schemaSensorReadings = `
CREATE TABLE IF NOT EXISTS sensor_readings (
    id TEXT PRIMARY KEY,
    device_id TEXT NOT NULL REFERENCES devices(id) ON DELETE CASCADE,
    soil_humidity REAL NOT NULL,
    water_level REAL,
    air_temperature REAL,
    air_humidity REAL,
    battery_level REAL,
    rssi REAL,
    recorded_at TIMESTAMP NOT NULL
);
`

const schemaAlerts = `
CREATE TABLE IF NOT EXISTS alerts (
    id TEXT PRIMARY KEY,
    device_id TEXT NOT NULL REFERENCES devices(id) ON DELETE CASCADE,
    type TEXT NOT NULL,
    severity TEXT NOT NULL,
    message TEXT NOT NULL,
    value REAL,
    is_read BOOLEAN NOT NULL DEFAULT 0,
    is_resolved BOOLEAN NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL
);
`

const schemaWateringEvents = `
CREATE TABLE IF NOT EXISTS watering_events (
    id TEXT PRIMARY KEY,
    device_id TEXT NOT NULL REFERENCES devices(id) ON DELETE CASCADE,
    started_at TIMESTAMP NOT NULL,
    ended_at TIMESTAMP,
    humidity_before REAL,
    humidity_after REAL,
    duration_sec INTEGER NOT NULL DEFAULT 0,
    success BOOLEAN
);
`

const indexSensorReadings = `CREATE INDEX IF NOT EXISTS idx_sensor_readings_device_time ON sensor_readings (device_id, recorded_at);`

const indexAlertsOpen = `CREATE INDEX IF NOT EXISTS idx_alerts_open ON alerts (device_id, type, is_resolved);`

const indexWateringEvents = `CREATE INDEX IF NOT EXISTS idx_watering_events_device_start ON watering_events (device_id, started_at);`

func ensureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{
		schemaDevices,
		schemaDeviceConfigs,
		schemaSensorReadings,
		schemaAlerts,
		schemaWateringEvents,
		indexSensorReadings,
		indexAlertsOpen,
		indexWateringEvents,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
