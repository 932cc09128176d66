package service

import (
	"context"
	"fmt"
	"time"

	"plant_watering/internal/models"
)

const (
	criticalSoilHumidity = 15.0
	emptyReservoirLevel  = 5.0
	lowBatteryLevel      = 20.0
	criticalBatteryLevel = 10.0
)

// EvaluateThresholds returns the alerts a telemetry snapshot calls for.
// Checks are independent; one reading can yield several alerts.
// DeviceID is left for the caller to fill in.
func EvaluateThresholds(deviceName string, cfg models.DeviceConfig, t models.Telemetry) []models.Alert {
	var out []models.Alert

	if t.SoilHumidity != nil {
		soil := *t.SoilHumidity
		if soil < float64(cfg.HumidityThresholdLow) {
			sev := models.SeverityWarning
			if soil < criticalSoilHumidity {
				sev = models.SeverityCritical
			}
			out = append(out, newAlert(models.AlertSoilTooDry, sev, soil, "%s: soil too dry (%g%%)", deviceName, soil))
		}
		if soil > float64(cfg.HumidityThresholdHigh) {
			out = append(out, newAlert(models.AlertSoilTooWet, models.SeverityWarning, soil, "%s: soil too wet (%g%%)", deviceName, soil))
		}
	}

	if t.WaterLevel != nil && *t.WaterLevel <= float64(cfg.ReservoirAlertLevel) {
		level := *t.WaterLevel
		if level <= emptyReservoirLevel {
			out = append(out, newAlert(models.AlertReservoirEmpty, models.SeverityCritical, level, "%s: reservoir empty (%g%%)", deviceName, level))
		} else {
			out = append(out, newAlert(models.AlertReservoirLow, models.SeverityWarning, level, "%s: reservoir low (%g%%)", deviceName, level))
		}
	}

	if t.BatteryLevel != nil && *t.BatteryLevel < lowBatteryLevel {
		battery := *t.BatteryLevel
		sev := models.SeverityWarning
		if battery < criticalBatteryLevel {
			sev = models.SeverityCritical
		}
		out = append(out, newAlert(models.AlertBatteryLow, sev, battery, "%s: battery low (%g%%)", deviceName, battery))
	}

	return out
}

func newAlert(typ models.AlertType, sev models.Severity, value float64, format string, args ...any) models.Alert {
	v := value
	return models.Alert{
		Type:     typ,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
		Value:    &v,
	}
}

// applyThresholds creates each candidate alert unless an unresolved alert of
// the same type already exists for the device.
func (s *IngestService) applyThresholds(ctx context.Context, device *models.Device, t models.Telemetry, at time.Time) error {
	if device.Config == nil {
		return nil
	}

	for _, candidate := range EvaluateThresholds(device.Name, *device.Config, t) {
		existing, err := s.alerts.FindUnresolved(ctx, device.ID, candidate.Type)
		if err != nil {
			return fmt.Errorf("find unresolved %s alert: %w", candidate.Type, err)
		}
		if existing != nil {
			s.log.Debugw("alert_suppressed", "device_id", device.ID, "type", candidate.Type, "existing_id", existing.ID)
			continue
		}

		candidate.DeviceID = device.ID
		candidate.CreatedAt = at
		if err := s.createAlert(ctx, candidate); err != nil {
			return fmt.Errorf("create %s alert: %w", candidate.Type, err)
		}
	}
	return nil
}
