package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"plant_watering/internal/models"

	"github.com/google/uuid"
)

type WateringSQLite struct {
	db *sql.DB
}

func NewWateringSQLite(db *sql.DB) *WateringSQLite { return &WateringSQLite{db: db} }

const (
	insertWateringSQL = `
		INSERT INTO watering_events (id, device_id, started_at, ended_at, humidity_before, humidity_after, duration_sec, success)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	selectLatestOpenWateringSQL = `
		SELECT id, device_id, started_at, ended_at, humidity_before, humidity_after, duration_sec, success
		FROM watering_events WHERE device_id = ? AND ended_at IS NULL
		ORDER BY started_at DESC LIMIT 1
	`

	closeWateringSQL = `
		UPDATE watering_events SET ended_at = ?, humidity_after = ?, success = ?, duration_sec = ?
		WHERE id = ?
	`
)

// Open inserts a watering event with no end time.
func (r *WateringSQLite) Open(ctx context.Context, ev models.WateringEvent) (models.WateringEvent, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	ev.StartedAt = nowUTC(ev.StartedAt)
	ev.EndedAt = nil

	_, err := r.db.ExecContext(ctx, insertWateringSQL,
		ev.ID,
		ev.DeviceID,
		ev.StartedAt,
		nil,
		nullFloat(ev.HumidityBefore),
		nullFloat(ev.HumidityAfter),
		ev.DurationSec,
		nullBool(ev.Success),
	)
	if err != nil {
		return models.WateringEvent{}, fmt.Errorf("insert watering event for device %s: %w", ev.DeviceID, err)
	}
	return ev, nil
}

// LatestOpen returns the most recently started open event of a device, or (nil, nil).
func (r *WateringSQLite) LatestOpen(ctx context.Context, deviceID string) (*models.WateringEvent, error) {
	var (
		ev            models.WateringEvent
		endedAt       sql.NullTime
		before, after sql.NullFloat64
		success       sql.NullBool
	)
	err := r.db.QueryRowContext(ctx, selectLatestOpenWateringSQL, deviceID).Scan(
		&ev.ID, &ev.DeviceID, &ev.StartedAt, &endedAt, &before, &after, &ev.DurationSec, &success,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select open watering event for device %s: %w", deviceID, err)
	}
	ev.StartedAt = ev.StartedAt.UTC()
	ev.EndedAt = timePtr(endedAt)
	ev.HumidityBefore = floatPtr(before)
	ev.HumidityAfter = floatPtr(after)
	ev.Success = boolPtr(success)
	return &ev, nil
}

// Close writes the outcome of a watering event. EndedAt must be set.
func (r *WateringSQLite) Close(ctx context.Context, ev models.WateringEvent) error {
	if ev.EndedAt == nil {
		return fmt.Errorf("close watering event %s: ended_at is required", ev.ID)
	}
	_, err := r.db.ExecContext(ctx, closeWateringSQL,
		nullTime(ev.EndedAt),
		nullFloat(ev.HumidityAfter),
		nullBool(ev.Success),
		ev.DurationSec,
		ev.ID,
	)
	if err != nil {
		return fmt.Errorf("close watering event %s: %w", ev.ID, err)
	}
	return nil
}
