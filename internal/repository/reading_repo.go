package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"plant_watering/internal/models"

	"github.com/google/uuid"
)

type ReadingSQLite struct {
	db *sql.DB
}

func NewReadingSQLite(db *sql.DB) *ReadingSQLite { return &ReadingSQLite{db: db} }

const (
	insertReadingSQL = `
		INSERT INTO sensor_readings (id, device_id, soil_humidity, water_level, air_temperature, air_humidity, battery_level, rssi, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	selectLatestReadingSQL = `
		SELECT id, device_id, soil_humidity, water_level, air_temperature, air_humidity, battery_level, rssi, recorded_at
		FROM sensor_readings WHERE device_id = ? ORDER BY recorded_at DESC LIMIT 1
	`
)

// Create inserts a reading. If ID or RecordedAt are empty, they're set.
// Absent optional values are written as NULL.
func (r *ReadingSQLite) Create(ctx context.Context, rd models.SensorReading) (models.SensorReading, error) {
	if rd.ID == "" {
		rd.ID = uuid.NewString()
	}
	rd.RecordedAt = nowUTC(rd.RecordedAt)

	_, err := r.db.ExecContext(ctx, insertReadingSQL,
		rd.ID,
		rd.DeviceID,
		rd.SoilHumidity,
		nullFloat(rd.WaterLevel),
		nullFloat(rd.AirTemperature),
		nullFloat(rd.AirHumidity),
		nullFloat(rd.BatteryLevel),
		nullFloat(rd.RSSI),
		rd.RecordedAt,
	)
	if err != nil {
		return models.SensorReading{}, fmt.Errorf("insert reading for device %s: %w", rd.DeviceID, err)
	}
	return rd, nil
}

// Latest returns the most recent reading of a device, or (nil, nil) if none.
func (r *ReadingSQLite) Latest(ctx context.Context, deviceID string) (*models.SensorReading, error) {
	var (
		rd                                    models.SensorReading
		water, airTemp, airHum, battery, rssi sql.NullFloat64
	)
	err := r.db.QueryRowContext(ctx, selectLatestReadingSQL, deviceID).Scan(
		&rd.ID, &rd.DeviceID, &rd.SoilHumidity, &water, &airTemp, &airHum, &battery, &rssi, &rd.RecordedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select latest reading for device %s: %w", deviceID, err)
	}
	rd.WaterLevel = floatPtr(water)
	rd.AirTemperature = floatPtr(airTemp)
	rd.AirHumidity = floatPtr(airHum)
	rd.BatteryLevel = floatPtr(battery)
	rd.RSSI = floatPtr(rssi)
	rd.RecordedAt = rd.RecordedAt.UTC()
	return &rd, nil
}
