package models

import "time"

type AlertType string

const (
	AlertSoilTooDry     AlertType = "SOIL_TOO_DRY"
	AlertSoilTooWet     AlertType = "SOIL_TOO_WET"
	AlertReservoirLow   AlertType = "RESERVOIR_LOW"
	AlertReservoirEmpty AlertType = "RESERVOIR_EMPTY"
	AlertBatteryLow     AlertType = "BATTERY_LOW"
	AlertDeviceOffline  AlertType = "DEVICE_OFFLINE"
	AlertPumpFailure    AlertType = "PUMP_FAILURE"
	AlertSensorError    AlertType = "SENSOR_ERROR"
)

type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// Alert is an operational alert. IsRead and IsResolved are only ever changed
// by operators; the ingestion core creates alerts and never updates them.
type Alert struct {
	ID         string    `json:"id"`
	DeviceID   string    `json:"deviceId"`
	Type       AlertType `json:"type"`
	Severity   Severity  `json:"severity"`
	Message    string    `json:"message"`
	Value      *float64  `json:"value"`
	IsRead     bool      `json:"isRead"`
	IsResolved bool      `json:"isResolved"`
	CreatedAt  time.Time `json:"createdAt"`
}
