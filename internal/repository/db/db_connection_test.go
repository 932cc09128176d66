package db

import (
	"path/filepath"
	"testing"
)

func TestInitDB_CreatesSchemaIdempotently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plants.db")

	first, err := InitDB(path)
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	_ = first.Close()

	conn, err := InitDB(path)
	if err != nil {
		t.Fatalf("InitDB second open: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	for _, table := range []string{"devices", "device_configs", "sensor_readings", "alerts", "watering_events"} {
		var name string
		err := conn.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}
}

func TestInitDB_RejectsInvertedThresholds(t *testing.T) {
	conn, err := InitDB(filepath.Join(t.TempDir(), "plants.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	if _, err := conn.Exec(`INSERT INTO devices (id, mac_address, name, created_at) VALUES ('d1', 'AA', 'Basil', CURRENT_TIMESTAMP)`); err != nil {
		t.Fatalf("insert device: %v", err)
	}
	_, err = conn.Exec(`INSERT INTO device_configs (device_id, humidity_threshold_low, humidity_threshold_high,
		reservoir_alert_level, watering_duration_sec, watering_cooldown_min, reading_interval_min,
		night_mode_start, night_mode_end) VALUES ('d1', 80, 30, 20, 5, 60, 15, 22, 7)`)
	if err == nil {
		t.Fatalf("expected check constraint violation")
	}
}
