package service

import (
	"context"
	"fmt"

	"plant_watering/internal/events"
	"plant_watering/internal/models"
)

const statusOnline = "online"

// StatusPayload is the data of a status event.
type StatusPayload struct {
	DeviceID string `json:"deviceId"`
	Name     string `json:"name"`
	IsOnline bool   `json:"isOnline"`
}

// handleStatus records presence. Every offline report raises a new
// DEVICE_OFFLINE alert; these are not de-duplicated.
func (s *IngestService) handleStatus(ctx context.Context, mac string, st models.StatusReport) error {
	online := st.Status == statusOnline

	device, err := s.devices.GetByMAC(ctx, mac)
	if err != nil {
		return fmt.Errorf("resolve device: %w", err)
	}
	if device == nil {
		s.log.Warnw("status_unknown_device", "mac", mac)
		return nil
	}

	at := s.now().UTC()
	if err := s.devices.UpdatePresence(ctx, device.ID, online, at); err != nil {
		return fmt.Errorf("update presence: %w", err)
	}

	s.bus.Emit(events.NewAt(events.TypeStatus, StatusPayload{DeviceID: device.ID, Name: device.Name, IsOnline: online}, at))

	if online {
		return nil
	}
	err = s.createAlert(ctx, models.Alert{
		DeviceID:  device.ID,
		Type:      models.AlertDeviceOffline,
		Severity:  models.SeverityWarning,
		Message:   fmt.Sprintf("%s is offline", device.Name),
		CreatedAt: at,
	})
	if err != nil {
		return fmt.Errorf("create offline alert: %w", err)
	}
	return nil
}
