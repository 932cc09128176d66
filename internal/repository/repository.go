package repository

import (
	"context"
	"database/sql"
	"time"

	"plant_watering/internal/models"
)

// DeviceRepo resolves devices and records their presence.
type DeviceRepo interface {
	GetByMAC(ctx context.Context, mac string) (*models.Device, error)
	UpdatePresence(ctx context.Context, deviceID string, online bool, seenAt time.Time) error
	Create(ctx context.Context, d models.Device) (models.Device, error)
}

// ReadingRepo is append-only storage for sensor readings.
type ReadingRepo interface {
	Create(ctx context.Context, r models.SensorReading) (models.SensorReading, error)
	Latest(ctx context.Context, deviceID string) (*models.SensorReading, error)
}

type AlertRepo interface {
	FindUnresolved(ctx context.Context, deviceID string, typ models.AlertType) (*models.Alert, error)
	Create(ctx context.Context, a models.Alert) (models.Alert, error)
}

type WateringRepo interface {
	Open(ctx context.Context, ev models.WateringEvent) (models.WateringEvent, error)
	LatestOpen(ctx context.Context, deviceID string) (*models.WateringEvent, error)
	Close(ctx context.Context, ev models.WateringEvent) error
}

type Repository struct {
	Devices  DeviceRepo
	Readings ReadingRepo
	Alerts   AlertRepo
	Watering WateringRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Devices:  NewDeviceSQLite(db),
		Readings: NewReadingSQLite(db),
		Alerts:   NewAlertSQLite(db),
		Watering: NewWateringSQLite(db),
	}
}
