package service

import (
	"context"
	"fmt"

	"plant_watering/internal/events"
	"plant_watering/internal/models"
)

// WateringPayload is the data of a watering event.
type WateringPayload struct {
	DeviceID       string   `json:"deviceId"`
	DurationSec    int      `json:"durationSec"`
	HumidityBefore *float64 `json:"humidityBefore,omitempty"`
	HumidityAfter  *float64 `json:"humidityAfter,omitempty"`
	Success        bool     `json:"success"`
}

// handleWateringDone closes the latest open watering event if there is one.
// The watering event is emitted either way; a failed run raises PUMP_FAILURE.
func (s *IngestService) handleWateringDone(ctx context.Context, mac string, done models.WateringDone) error {
	device, err := s.devices.GetByMAC(ctx, mac)
	if err != nil {
		return fmt.Errorf("resolve device: %w", err)
	}
	if device == nil {
		s.log.Warnw("watering_unknown_device", "mac", mac)
		return nil
	}

	at := s.now().UTC()
	open, err := s.watering.LatestOpen(ctx, device.ID)
	if err != nil {
		return fmt.Errorf("find open watering event: %w", err)
	}
	if open != nil {
		success := done.Success
		open.EndedAt = &at
		open.HumidityAfter = done.HumidityAfter
		open.Success = &success
		open.DurationSec = done.DurationSec
		if err := s.watering.Close(ctx, *open); err != nil {
			return fmt.Errorf("close watering event: %w", err)
		}
	} else {
		s.log.Infow("watering_no_open_event", "device_id", device.ID)
	}

	s.bus.Emit(events.NewAt(events.TypeWatering, WateringPayload{
		DeviceID:       device.ID,
		DurationSec:    done.DurationSec,
		HumidityBefore: done.HumidityBefore,
		HumidityAfter:  done.HumidityAfter,
		Success:        done.Success,
	}, at))

	if done.Success {
		return nil
	}
	err = s.createAlert(ctx, models.Alert{
		DeviceID:  device.ID,
		Type:      models.AlertPumpFailure,
		Severity:  models.SeverityCritical,
		Message:   fmt.Sprintf("%s: pump failure during watering", device.Name),
		CreatedAt: at,
	})
	if err != nil {
		return fmt.Errorf("create pump failure alert: %w", err)
	}
	return nil
}
