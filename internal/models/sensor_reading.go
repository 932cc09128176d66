package models

import "time"

// SensorReading is an immutable telemetry snapshot. Nil pointers mean the
// device did not report that value.
type SensorReading struct {
	ID             string    `json:"id"`
	DeviceID       string    `json:"deviceId"`
	SoilHumidity   float64   `json:"soilHumidity"`
	WaterLevel     *float64  `json:"waterLevel"`
	AirTemperature *float64  `json:"airTemperature"`
	AirHumidity    *float64  `json:"airHumidity"`
	BatteryLevel   *float64  `json:"batteryLevel"`
	RSSI           *float64  `json:"rssi"`
	RecordedAt     time.Time `json:"recordedAt"`
}
