package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"plant_watering/internal/models"

	"github.com/google/uuid"
)

type AlertSQLite struct {
	db *sql.DB
}

func NewAlertSQLite(db *sql.DB) *AlertSQLite { return &AlertSQLite{db: db} }

const (
	selectUnresolvedAlertSQL = `
		SELECT id, device_id, type, severity, message, value, is_read, is_resolved, created_at
		FROM alerts WHERE device_id = ? AND type = ? AND is_resolved = 0
		ORDER BY created_at DESC LIMIT 1
	`

	insertAlertSQL = `
		INSERT INTO alerts (id, device_id, type, severity, message, value, is_read, is_resolved, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
)

// FindUnresolved returns the newest unresolved alert of typ for a device, or (nil, nil).
func (r *AlertSQLite) FindUnresolved(ctx context.Context, deviceID string, typ models.AlertType) (*models.Alert, error) {
	var (
		a     models.Alert
		value sql.NullFloat64
	)
	err := r.db.QueryRowContext(ctx, selectUnresolvedAlertSQL, deviceID, string(typ)).Scan(
		&a.ID, &a.DeviceID, &a.Type, &a.Severity, &a.Message, &value, &a.IsRead, &a.IsResolved, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select unresolved %s alert for device %s: %w", typ, deviceID, err)
	}
	a.Value = floatPtr(value)
	a.CreatedAt = a.CreatedAt.UTC()
	return &a, nil
}

// Create inserts a new alert. If ID or CreatedAt are empty, they're set.
func (r *AlertSQLite) Create(ctx context.Context, a models.Alert) (models.Alert, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = nowUTC(a.CreatedAt)

	_, err := r.db.ExecContext(ctx, insertAlertSQL,
		a.ID,
		a.DeviceID,
		string(a.Type),
		string(a.Severity),
		a.Message,
		nullFloat(a.Value),
		a.IsRead,
		a.IsResolved,
		a.CreatedAt,
	)
	if err != nil {
		return models.Alert{}, fmt.Errorf("insert %s alert for device %s: %w", a.Type, a.DeviceID, err)
	}
	return a, nil
}
