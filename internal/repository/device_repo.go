package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"plant_watering/internal/models"

	"github.com/google/uuid"
)

type DeviceSQLite struct {
	db *sql.DB
}

func NewDeviceSQLite(db *sql.DB) *DeviceSQLite {
	return &DeviceSQLite{db: db}
}

var _ DeviceRepo = (*DeviceSQLite)(nil)

const (
	selectDeviceByMACSQL = `
		SELECT d.id, d.mac_address, d.name, d.location, d.is_online, d.last_seen, d.firmware_version, d.created_at,
			c.device_id, c.humidity_threshold_low, c.humidity_threshold_high, c.reservoir_alert_level,
			c.watering_duration_sec, c.watering_cooldown_min, c.reading_interval_min,
			c.auto_watering_enabled, c.night_mode_start, c.night_mode_end
		FROM devices d
		LEFT JOIN device_configs c ON c.device_id = d.id
		WHERE d.mac_address = ?
	`

	updatePresenceSQL = `UPDATE devices SET is_online = ?, last_seen = ? WHERE id = ?`

	insertDeviceSQL = `
		INSERT INTO devices (id, mac_address, name, location, is_online, last_seen, firmware_version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	insertDeviceConfigSQL = `
		INSERT INTO device_configs (device_id, humidity_threshold_low, humidity_threshold_high, reservoir_alert_level,
			watering_duration_sec, watering_cooldown_min, reading_interval_min, auto_watering_enabled,
			night_mode_start, night_mode_end)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
)

// GetByMAC loads a device together with its configuration.
// Returns (nil, nil) if no device is registered for mac.
func (r *DeviceSQLite) GetByMAC(ctx context.Context, mac string) (*models.Device, error) {
	var (
		d                    models.Device
		location, firmware   sql.NullString
		lastSeen             sql.NullTime
		cfgDeviceID          sql.NullString
		low, high, reserve   sql.NullInt64
		duration, cooldown   sql.NullInt64
		interval             sql.NullInt64
		autoWatering         sql.NullBool
		nightStart, nightEnd sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, selectDeviceByMACSQL, mac).Scan(
		&d.ID, &d.MACAddress, &d.Name, &location, &d.IsOnline, &lastSeen, &firmware, &d.CreatedAt,
		&cfgDeviceID, &low, &high, &reserve,
		&duration, &cooldown, &interval,
		&autoWatering, &nightStart, &nightEnd,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select device %q: %w", mac, err)
	}

	d.Location = location.String
	d.FirmwareVersion = firmware.String
	d.LastSeen = timePtr(lastSeen)
	d.CreatedAt = d.CreatedAt.UTC()

	if cfgDeviceID.Valid {
		d.Config = &models.DeviceConfig{
			DeviceID:              cfgDeviceID.String,
			HumidityThresholdLow:  int(low.Int64),
			HumidityThresholdHigh: int(high.Int64),
			ReservoirAlertLevel:   int(reserve.Int64),
			WateringDurationSec:   int(duration.Int64),
			WateringCooldownMin:   int(cooldown.Int64),
			ReadingIntervalMin:    int(interval.Int64),
			AutoWateringEnabled:   autoWatering.Bool,
			NightModeStart:        int(nightStart.Int64),
			NightModeEnd:          int(nightEnd.Int64),
		}
	}
	return &d, nil
}

// UpdatePresence sets the online flag and last-seen timestamp (stored as UTC).
func (r *DeviceSQLite) UpdatePresence(ctx context.Context, deviceID string, online bool, seenAt time.Time) error {
	if _, err := r.db.ExecContext(ctx, updatePresenceSQL, online, nowUTC(seenAt), deviceID); err != nil {
		return fmt.Errorf("update presence of device %s: %w", deviceID, err)
	}
	return nil
}

// Create provisions a device and its configuration in one transaction.
// A nil Config is replaced with models.DefaultDeviceConfig.
func (r *DeviceSQLite) Create(ctx context.Context, d models.Device) (models.Device, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.CreatedAt = nowUTC(d.CreatedAt)
	if d.Config == nil {
		cfg := models.DefaultDeviceConfig()
		d.Config = &cfg
	}
	d.Config.DeviceID = d.ID

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Device{}, fmt.Errorf("begin device transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, insertDeviceSQL,
		d.ID, d.MACAddress, d.Name, d.Location, d.IsOnline, nullTime(d.LastSeen), d.FirmwareVersion, d.CreatedAt,
	); err != nil {
		return models.Device{}, fmt.Errorf("insert device %q: %w", d.MACAddress, err)
	}

	c := d.Config
	if _, err := tx.ExecContext(ctx, insertDeviceConfigSQL,
		d.ID, c.HumidityThresholdLow, c.HumidityThresholdHigh, c.ReservoirAlertLevel,
		c.WateringDurationSec, c.WateringCooldownMin, c.ReadingIntervalMin, c.AutoWateringEnabled,
		c.NightModeStart, c.NightModeEnd,
	); err != nil {
		return models.Device{}, fmt.Errorf("insert config for device %q: %w", d.MACAddress, err)
	}

	if err := tx.Commit(); err != nil {
		return models.Device{}, fmt.Errorf("commit device %q: %w", d.MACAddress, err)
	}
	return d, nil
}
