package models

// Telemetry is the body of iot/plants/{mac}/telemetry. SoilHumidity is
// required; a nil value makes the message invalid.
type Telemetry struct {
	SoilHumidity   *float64 `json:"soilHumidity"`
	WaterLevel     *float64 `json:"waterLevel,omitempty"`
	AirTemperature *float64 `json:"airTemperature,omitempty"`
	AirHumidity    *float64 `json:"airHumidity,omitempty"`
	BatteryLevel   *float64 `json:"batteryLevel,omitempty"`
	RSSI           *float64 `json:"rssi,omitempty"`
	Timestamp      *int64   `json:"timestamp,omitempty"` // device clock, ignored
}

// StatusReport is the body of iot/plants/{mac}/status.
type StatusReport struct {
	Status string `json:"status"`
}

// WateringDone is the body of iot/plants/{mac}/watering/done.
type WateringDone struct {
	DurationSec    int      `json:"durationSec"`
	HumidityBefore *float64 `json:"humidityBefore,omitempty"`
	HumidityAfter  *float64 `json:"humidityAfter,omitempty"`
	Success        bool     `json:"success"`
}

type CommandAction string

const (
	ActionWater  CommandAction = "water"
	ActionConfig CommandAction = "config"
)

// Command is the body published on iot/plants/{mac}/command.
type Command struct {
	Action      CommandAction  `json:"action"`
	DurationSec int            `json:"durationSec,omitempty"`
	Config      map[string]any `json:"config,omitempty"`
}
