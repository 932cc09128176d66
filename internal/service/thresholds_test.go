package service

import (
	"testing"

	"plant_watering/internal/models"
)

func TestEvaluateThresholds(t *testing.T) {
	t.Parallel()

	cfg := models.DeviceConfig{HumidityThresholdLow: 20, HumidityThresholdHigh: 80, ReservoirAlertLevel: 10}

	type want struct {
		typ models.AlertType
		sev models.Severity
	}
	cases := []struct {
		name string
		in   models.Telemetry
		want []want
	}{
		{"within bounds", models.Telemetry{SoilHumidity: f64(50)}, nil},
		{"soil equal to low bound", models.Telemetry{SoilHumidity: f64(20)}, nil},
		{"soil equal to high bound", models.Telemetry{SoilHumidity: f64(80)}, nil},
		{"soil too wet", models.Telemetry{SoilHumidity: f64(81)}, []want{{models.AlertSoilTooWet, models.SeverityWarning}}},
		{"soil too dry warning", models.Telemetry{SoilHumidity: f64(19)}, []want{{models.AlertSoilTooDry, models.SeverityWarning}}},
		{"soil too dry critical", models.Telemetry{SoilHumidity: f64(14.9)}, []want{{models.AlertSoilTooDry, models.SeverityCritical}}},
		{"reservoir at alert level", models.Telemetry{SoilHumidity: f64(50), WaterLevel: f64(10)}, []want{{models.AlertReservoirLow, models.SeverityWarning}}},
		{"reservoir above alert level", models.Telemetry{SoilHumidity: f64(50), WaterLevel: f64(11)}, nil},
		{"reservoir empty at 5", models.Telemetry{SoilHumidity: f64(50), WaterLevel: f64(5)}, []want{{models.AlertReservoirEmpty, models.SeverityCritical}}},
		{"battery at 20", models.Telemetry{SoilHumidity: f64(50), BatteryLevel: f64(20)}, nil},
		{"battery low", models.Telemetry{SoilHumidity: f64(50), BatteryLevel: f64(10)}, []want{{models.AlertBatteryLow, models.SeverityWarning}}},
		{"battery critical", models.Telemetry{SoilHumidity: f64(50), BatteryLevel: f64(9.5)}, []want{{models.AlertBatteryLow, models.SeverityCritical}}},
		{"zero water level is present", models.Telemetry{SoilHumidity: f64(50), WaterLevel: f64(0)}, []want{{models.AlertReservoirEmpty, models.SeverityCritical}}},
		{
			"independent checks combine",
			models.Telemetry{SoilHumidity: f64(12), WaterLevel: f64(3), BatteryLevel: f64(8)},
			[]want{
				{models.AlertSoilTooDry, models.SeverityCritical},
				{models.AlertReservoirEmpty, models.SeverityCritical},
				{models.AlertBatteryLow, models.SeverityCritical},
			},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := EvaluateThresholds("Basil", cfg, tc.in)
			if len(got) != len(tc.want) {
				t.Fatalf("got %d alerts, want %d: %+v", len(got), len(tc.want), got)
			}
			for i, w := range tc.want {
				if got[i].Type != w.typ || got[i].Severity != w.sev {
					t.Errorf("alert %d = %s/%s, want %s/%s", i, got[i].Type, got[i].Severity, w.typ, w.sev)
				}
				if got[i].Value == nil {
					t.Errorf("alert %d has no trigger value", i)
				}
				if got[i].DeviceID != "" {
					t.Errorf("alert %d: DeviceID must be left to the caller", i)
				}
			}
		})
	}
}

func TestEvaluateThresholds_Message(t *testing.T) {
	t.Parallel()
	cfg := models.DeviceConfig{HumidityThresholdLow: 20, HumidityThresholdHigh: 80, ReservoirAlertLevel: 10}

	got := EvaluateThresholds("Basil", cfg, models.Telemetry{SoilHumidity: f64(12.5)})
	if len(got) != 1 {
		t.Fatalf("got %d alerts", len(got))
	}
	if got[0].Message != "Basil: soil too dry (12.5%)" {
		t.Errorf("message = %q", got[0].Message)
	}
	if *got[0].Value != 12.5 {
		t.Errorf("value = %v", *got[0].Value)
	}
}
