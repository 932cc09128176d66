package service

import (
	"context"
	"errors"

	"plant_watering/internal/events"
	"plant_watering/internal/logger"
	"plant_watering/internal/models"
	"plant_watering/internal/repository"
)

// Domain errors returned to the API layer.
var (
	ErrDeviceNotFound = errors.New("device not found")
	ErrInvalidConfig  = errors.New("invalid device config")
	ErrInvalidCommand = errors.New("invalid command")
	// ErrWateringInProgress means the device already has an open watering
	// event that has not yet timed out.
	ErrWateringInProgress = errors.New("watering already in progress")
)

// Ingest consumes inbound device messages. It never returns errors: every
// failure is logged and the message dropped.
type Ingest interface {
	HandleMessage(ctx context.Context, topic string, payload []byte)
}

// Commands is the outbound path to devices.
type Commands interface {
	SendCommand(mac string, cmd models.Command) error
	PushConfig(ctx context.Context, mac string, cfg models.DeviceConfig) error
	Water(ctx context.Context, mac string, durationSec int) (models.WateringEvent, error)
}

// Authorization verifies bearer tokens issued by the external auth service.
type Authorization interface {
	Enabled() bool
	ParseToken(accessToken string) (string, error)
}

// Publisher is satisfied by *mqtt.Manager.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Emitter is satisfied by *events.Bus.
type Emitter interface {
	Emit(ev events.Event)
}

// ReadingArchive mirrors persisted readings to a time-series store.
type ReadingArchive interface {
	WriteReading(ctx context.Context, mac string, r models.SensorReading) error
}

type Service struct {
	Ingest
	Commands
	Authorization
}

// Deps collects what NewService wires together. Archive may be nil.
type Deps struct {
	Repos     *repository.Repository
	Bus       Emitter
	Publisher Publisher
	Archive   ReadingArchive
	JWTSecret string
	Log       *logger.Logger
}

func NewService(d Deps) *Service {
	return &Service{
		Ingest:        NewIngestService(d.Repos, d.Bus, d.Archive, d.Log),
		Commands:      NewCommandService(d.Repos, d.Publisher, d.Log),
		Authorization: NewAuthService(d.JWTSecret),
	}
}
