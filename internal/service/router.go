package service

import (
	"context"
	"encoding/json"
	"errors"

	"plant_watering/internal/models"
	"plant_watering/internal/mqtt"
)

var errMissingSoilHumidity = errors.New("soilHumidity is required")

// HandleMessage routes one inbound message to its handler.
func (s *IngestService) HandleMessage(ctx context.Context, topic string, payload []byte) {
	route, ok := mqtt.ParseTopic(topic)
	if !ok {
		s.log.Debugw("mqtt_foreign_topic", "topic", topic)
		return
	}

	var err error
	switch route.Action {
	case mqtt.ActionTelemetry:
		var t models.Telemetry
		if !s.decode(topic, payload, &t) {
			return
		}
		if t.SoilHumidity == nil {
			s.log.Warnw("mqtt_payload_invalid", "topic", topic, "err", errMissingSoilHumidity)
			return
		}
		err = s.handleTelemetry(ctx, route.DeviceID, t)
	case mqtt.ActionStatus:
		var st models.StatusReport
		if !s.decode(topic, payload, &st) {
			return
		}
		err = s.handleStatus(ctx, route.DeviceID, st)
	case mqtt.ActionWateringDone:
		var done models.WateringDone
		if !s.decode(topic, payload, &done) {
			return
		}
		err = s.handleWateringDone(ctx, route.DeviceID, done)
	case mqtt.ActionUnknown:
		s.log.Debugw("mqtt_unknown_action", "topic", topic, "action", route.Suffix)
		return
	}

	if err != nil {
		s.log.Errorw("mqtt_message_failed", "topic", topic, "action", route.Action.String(), "err", err)
	}
}

func (s *IngestService) decode(topic string, payload []byte, v any) bool {
	if err := json.Unmarshal(payload, v); err != nil {
		s.log.Warnw("mqtt_payload_invalid", "topic", topic, "err", err)
		return false
	}
	return true
}
