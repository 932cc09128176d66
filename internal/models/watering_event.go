package models

import "time"

// WateringEvent is opened when a water command is issued and closed when the
// device reports completion. EndedAt == nil means the event is still open.
type WateringEvent struct {
	ID             string     `json:"id"`
	DeviceID       string     `json:"deviceId"`
	StartedAt      time.Time  `json:"startedAt"`
	EndedAt        *time.Time `json:"endedAt"`
	HumidityBefore *float64   `json:"humidityBefore"`
	HumidityAfter  *float64   `json:"humidityAfter"`
	DurationSec    int        `json:"durationSec"`
	Success        *bool      `json:"success"`
}
