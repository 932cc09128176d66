package models

import "time"

// Device is a physical watering unit, keyed by its hardware (MAC) address.
type Device struct {
	ID              string        `json:"id"`
	MACAddress      string        `json:"macAddress"`
	Name            string        `json:"name"`
	Location        string        `json:"location,omitempty"`
	IsOnline        bool          `json:"isOnline"`
	LastSeen        *time.Time    `json:"lastSeen,omitempty"`
	FirmwareVersion string        `json:"firmwareVersion,omitempty"`
	Config          *DeviceConfig `json:"config,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// DeviceConfig holds per-device thresholds. HumidityThresholdLow < HumidityThresholdHigh.
type DeviceConfig struct {
	DeviceID              string `json:"deviceId,omitempty"`
	HumidityThresholdLow  int    `json:"humidityThresholdLow"`  // %
	HumidityThresholdHigh int    `json:"humidityThresholdHigh"` // %
	ReservoirAlertLevel   int    `json:"reservoirAlertLevel"`   // %
	WateringDurationSec   int    `json:"wateringDurationSec"`
	WateringCooldownMin   int    `json:"wateringCooldownMin"`
	ReadingIntervalMin    int    `json:"readingIntervalMin"`
	AutoWateringEnabled   bool   `json:"autoWateringEnabled"`
	NightModeStart        int    `json:"nightModeStart"` // hour 0-23
	NightModeEnd          int    `json:"nightModeEnd"`   // hour 0-23
}

// DefaultDeviceConfig is applied when a device is provisioned without one.
func DefaultDeviceConfig() DeviceConfig {
	return DeviceConfig{
		HumidityThresholdLow:  30,
		HumidityThresholdHigh: 80,
		ReservoirAlertLevel:   20,
		WateringDurationSec:   5,
		WateringCooldownMin:   60,
		ReadingIntervalMin:    15,
		AutoWateringEnabled:   false,
		NightModeStart:        22,
		NightModeEnd:          7,
	}
}
