package service

import (
	"context"
	"fmt"

	"plant_watering/internal/events"
	"plant_watering/internal/models"
)

// ReadingPayload is the data of a reading event.
type ReadingPayload struct {
	models.SensorReading
	DeviceName string `json:"deviceName"`
}

// handleTelemetry persists the reading, marks the device online, emits the
// reading and then evaluates thresholds. The device clock is ignored.
func (s *IngestService) handleTelemetry(ctx context.Context, mac string, t models.Telemetry) error {
	device, err := s.devices.GetByMAC(ctx, mac)
	if err != nil {
		return fmt.Errorf("resolve device: %w", err)
	}
	if device == nil {
		s.log.Warnw("telemetry_unknown_device", "mac", mac)
		return nil
	}

	at := s.now().UTC()
	reading, err := s.readings.Create(ctx, models.SensorReading{
		DeviceID:       device.ID,
		SoilHumidity:   *t.SoilHumidity,
		WaterLevel:     t.WaterLevel,
		AirTemperature: t.AirTemperature,
		AirHumidity:    t.AirHumidity,
		BatteryLevel:   t.BatteryLevel,
		RSSI:           t.RSSI,
		RecordedAt:     at,
	})
	if err != nil {
		return fmt.Errorf("persist reading: %w", err)
	}

	if s.archive != nil {
		if err := s.archive.WriteReading(ctx, mac, reading); err != nil {
			s.log.Warnw("archive_write_failed", "mac", mac, "err", err)
		}
	}

	if err := s.devices.UpdatePresence(ctx, device.ID, true, at); err != nil {
		return fmt.Errorf("update presence: %w", err)
	}

	s.bus.Emit(events.NewAt(events.TypeReading, ReadingPayload{SensorReading: reading, DeviceName: device.Name}, at))

	return s.applyThresholds(ctx, device, t, at)
}
