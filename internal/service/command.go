package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"plant_watering/internal/logger"
	"plant_watering/internal/models"
	"plant_watering/internal/mqtt"
	"plant_watering/internal/repository"
)

const (
	commandQoS byte = 1

	defaultWateringSec = 5
	maxWateringSec     = 60
	maxIntervalMin     = 1440

	// An open watering event counts as abandoned once this long has passed
	// beyond its duration without a completion report.
	staleWateringGrace = time.Minute
)

// CommandService publishes commands and configuration to devices.
type CommandService struct {
	devices  repository.DeviceRepo
	readings repository.ReadingRepo
	watering repository.WateringRepo
	pub      Publisher
	log      *logger.Logger
	now      func() time.Time
}

var _ Commands = (*CommandService)(nil)

func NewCommandService(repos *repository.Repository, pub Publisher, log *logger.Logger) *CommandService {
	return &CommandService{
		devices:  repos.Devices,
		readings: repos.Readings,
		watering: repos.Watering,
		pub:      pub,
		log:      log,
		now:      time.Now,
	}
}

// SendCommand publishes cmd to iot/plants/{mac}/command (QoS 1, not retained).
// Returns mqtt.ErrNotConnected when there is no live session.
func (s *CommandService) SendCommand(mac string, cmd models.Command) error {
	if mac == "" {
		return fmt.Errorf("%w: device address is required", ErrInvalidCommand)
	}
	switch cmd.Action {
	case models.ActionWater, models.ActionConfig:
	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalidCommand, cmd.Action)
	}

	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("encode command: %w", err)
	}
	topic := mqtt.Topics{}.Command(mac)
	if err := s.pub.Publish(topic, payload, commandQoS, false); err != nil {
		return fmt.Errorf("publish command to %s: %w", topic, err)
	}
	s.log.Infow("command_sent", "topic", topic, "action", cmd.Action)
	return nil
}

// PushConfig validates cfg and publishes it retained to iot/plants/{mac}/config
// so devices pick it up when they (re)subscribe.
func (s *CommandService) PushConfig(ctx context.Context, mac string, cfg models.DeviceConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if mac == "" {
		return fmt.Errorf("%w: device address is required", ErrInvalidCommand)
	}
	if err := ValidateConfig(cfg); err != nil {
		return err
	}

	cfg.DeviceID = ""
	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	topic := mqtt.Topics{}.Config(mac)
	if err := s.pub.Publish(topic, payload, commandQoS, true); err != nil {
		return fmt.Errorf("publish config to %s: %w", topic, err)
	}
	s.log.Infow("config_pushed", "topic", topic)
	return nil
}

// Water sends a water command and opens the watering event that the
// completion message will later close. durationSec 0 means the device
// default. The event is only opened once the command was handed off.
// A device has at most one open event: a running one rejects the request
// with ErrWateringInProgress, an abandoned one is closed as failed.
func (s *CommandService) Water(ctx context.Context, mac string, durationSec int) (models.WateringEvent, error) {
	if durationSec < 0 || durationSec > maxWateringSec {
		return models.WateringEvent{}, fmt.Errorf("%w: durationSec must be between 1 and %d", ErrInvalidCommand, maxWateringSec)
	}

	device, err := s.devices.GetByMAC(ctx, mac)
	if err != nil {
		return models.WateringEvent{}, fmt.Errorf("resolve device: %w", err)
	}
	if device == nil {
		return models.WateringEvent{}, fmt.Errorf("%w: %s", ErrDeviceNotFound, mac)
	}

	if durationSec == 0 {
		durationSec = defaultWateringSec
		if device.Config != nil && device.Config.WateringDurationSec > 0 {
			durationSec = device.Config.WateringDurationSec
		}
	}

	at := s.now().UTC()
	if err := s.settleOpenWatering(ctx, device.ID, at); err != nil {
		return models.WateringEvent{}, err
	}

	latest, err := s.readings.Latest(ctx, device.ID)
	if err != nil {
		return models.WateringEvent{}, fmt.Errorf("load latest reading: %w", err)
	}

	if err := s.SendCommand(mac, models.Command{Action: models.ActionWater, DurationSec: durationSec}); err != nil {
		return models.WateringEvent{}, err
	}

	ev := models.WateringEvent{
		DeviceID:    device.ID,
		StartedAt:   at,
		DurationSec: durationSec,
	}
	if latest != nil {
		before := latest.SoilHumidity
		ev.HumidityBefore = &before
	}
	opened, err := s.watering.Open(ctx, ev)
	if err != nil {
		return models.WateringEvent{}, fmt.Errorf("open watering event: %w", err)
	}
	return opened, nil
}

func (s *CommandService) settleOpenWatering(ctx context.Context, deviceID string, at time.Time) error {
	open, err := s.watering.LatestOpen(ctx, deviceID)
	if err != nil {
		return fmt.Errorf("find open watering event: %w", err)
	}
	if open == nil {
		return nil
	}

	deadline := open.StartedAt.Add(time.Duration(open.DurationSec)*time.Second + staleWateringGrace)
	if at.Before(deadline) {
		return fmt.Errorf("%w: event %s started at %s", ErrWateringInProgress, open.ID, open.StartedAt.Format(time.RFC3339))
	}

	failed := false
	open.EndedAt = &at
	open.Success = &failed
	if err := s.watering.Close(ctx, *open); err != nil {
		return fmt.Errorf("close abandoned watering event: %w", err)
	}
	s.log.Warnw("watering_abandoned_event_closed", "device_id", deviceID, "event_id", open.ID)
	return nil
}

// ValidateConfig applies the bounds devices accept.
func ValidateConfig(cfg models.DeviceConfig) error {
	check := func(name string, v, lo, hi int) error {
		if v < lo || v > hi {
			return fmt.Errorf("%w: %s must be between %d and %d", ErrInvalidConfig, name, lo, hi)
		}
		return nil
	}
	for _, err := range []error{
		check("humidityThresholdLow", cfg.HumidityThresholdLow, 0, 100),
		check("humidityThresholdHigh", cfg.HumidityThresholdHigh, 0, 100),
		check("reservoirAlertLevel", cfg.ReservoirAlertLevel, 0, 100),
		check("wateringDurationSec", cfg.WateringDurationSec, 1, maxWateringSec),
		check("wateringCooldownMin", cfg.WateringCooldownMin, 1, maxIntervalMin),
		check("readingIntervalMin", cfg.ReadingIntervalMin, 1, maxIntervalMin),
		check("nightModeStart", cfg.NightModeStart, 0, 23),
		check("nightModeEnd", cfg.NightModeEnd, 0, 23),
	} {
		if err != nil {
			return err
		}
	}
	if cfg.HumidityThresholdLow >= cfg.HumidityThresholdHigh {
		return fmt.Errorf("%w: humidityThresholdLow must be below humidityThresholdHigh", ErrInvalidConfig)
	}
	return nil
}
