package service

import (
	"context"
	"time"

	"plant_watering/internal/events"
	"plant_watering/internal/logger"
	"plant_watering/internal/models"
	"plant_watering/internal/repository"
)

// IngestService turns device messages into persisted state and bus events.
type IngestService struct {
	devices  repository.DeviceRepo
	readings repository.ReadingRepo
	alerts   repository.AlertRepo
	watering repository.WateringRepo

	bus     Emitter
	archive ReadingArchive
	log     *logger.Logger

	now func() time.Time
}

var _ Ingest = (*IngestService)(nil)

func NewIngestService(repos *repository.Repository, bus Emitter, archive ReadingArchive, log *logger.Logger) *IngestService {
	return &IngestService{
		devices:  repos.Devices,
		readings: repos.Readings,
		alerts:   repos.Alerts,
		watering: repos.Watering,
		bus:      bus,
		archive:  archive,
		log:      log,
		now:      time.Now,
	}
}

// createAlert persists a and emits it on the bus.
func (s *IngestService) createAlert(ctx context.Context, a models.Alert) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now().UTC()
	}
	created, err := s.alerts.Create(ctx, a)
	if err != nil {
		return err
	}
	s.bus.Emit(events.NewAt(events.TypeAlert, created, created.CreatedAt))
	return nil
}
