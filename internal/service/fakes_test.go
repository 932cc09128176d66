package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"plant_watering/internal/events"
	"plant_watering/internal/models"
	"plant_watering/internal/repository"
)

type presenceUpdate struct {
	deviceID string
	online   bool
	at       time.Time
}

// store backs the in-memory repositories used by service tests.
type store struct {
	mu sync.Mutex

	devices  map[string]*models.Device // by MAC
	readings []models.SensorReading
	alerts   []models.Alert
	watering []models.WateringEvent
	presence []presenceUpdate
	seq      int

	readingErr  error
	presenceErr error
	alertErr    error
}

func newStore() *store {
	return &store{devices: make(map[string]*models.Device)}
}

func (s *store) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *store) addDevice(mac, name string, cfg *models.DeviceConfig) *models.Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := &models.Device{ID: s.nextID("dev"), MACAddress: mac, Name: name, Config: cfg}
	s.devices[mac] = d
	return d
}

func (s *store) alertsOf(typ models.AlertType) []models.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Alert
	for _, a := range s.alerts {
		if a.Type == typ {
			out = append(out, a)
		}
	}
	return out
}

func (s *store) repos() *repository.Repository {
	return &repository.Repository{
		Devices:  &fakeDevices{s},
		Readings: &fakeReadings{s},
		Alerts:   &fakeAlerts{s},
		Watering: &fakeWatering{s},
	}
}

type fakeDevices struct{ s *store }

func (f *fakeDevices) GetByMAC(_ context.Context, mac string) (*models.Device, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	d, ok := f.s.devices[mac]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDevices) UpdatePresence(_ context.Context, deviceID string, online bool, at time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.presenceErr != nil {
		return f.s.presenceErr
	}
	f.s.presence = append(f.s.presence, presenceUpdate{deviceID, online, at})
	for _, d := range f.s.devices {
		if d.ID == deviceID {
			seen := at
			d.IsOnline, d.LastSeen = online, &seen
		}
	}
	return nil
}

func (f *fakeDevices) Create(_ context.Context, d models.Device) (models.Device, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	d.ID = f.s.nextID("dev")
	f.s.devices[d.MACAddress] = &d
	return d, nil
}

type fakeReadings struct{ s *store }

func (f *fakeReadings) Create(_ context.Context, r models.SensorReading) (models.SensorReading, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.readingErr != nil {
		return models.SensorReading{}, f.s.readingErr
	}
	r.ID = f.s.nextID("reading")
	f.s.readings = append(f.s.readings, r)
	return r, nil
}

func (f *fakeReadings) Latest(_ context.Context, deviceID string) (*models.SensorReading, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for i := len(f.s.readings) - 1; i >= 0; i-- {
		if f.s.readings[i].DeviceID == deviceID {
			r := f.s.readings[i]
			return &r, nil
		}
	}
	return nil, nil
}

type fakeAlerts struct{ s *store }

func (f *fakeAlerts) FindUnresolved(_ context.Context, deviceID string, typ models.AlertType) (*models.Alert, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for i := len(f.s.alerts) - 1; i >= 0; i-- {
		a := f.s.alerts[i]
		if a.DeviceID == deviceID && a.Type == typ && !a.IsResolved {
			return &a, nil
		}
	}
	return nil, nil
}

func (f *fakeAlerts) Create(_ context.Context, a models.Alert) (models.Alert, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.alertErr != nil {
		return models.Alert{}, f.s.alertErr
	}
	a.ID = f.s.nextID("alert")
	f.s.alerts = append(f.s.alerts, a)
	return a, nil
}

type fakeWatering struct{ s *store }

func (f *fakeWatering) Open(_ context.Context, ev models.WateringEvent) (models.WateringEvent, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	ev.ID = f.s.nextID("watering")
	f.s.watering = append(f.s.watering, ev)
	return ev, nil
}

func (f *fakeWatering) LatestOpen(_ context.Context, deviceID string) (*models.WateringEvent, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var latest *models.WateringEvent
	for i := range f.s.watering {
		ev := f.s.watering[i]
		if ev.DeviceID != deviceID || ev.EndedAt != nil {
			continue
		}
		if latest == nil || ev.StartedAt.After(latest.StartedAt) {
			cp := ev
			latest = &cp
		}
	}
	return latest, nil
}

func (f *fakeWatering) Close(_ context.Context, ev models.WateringEvent) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for i := range f.s.watering {
		if f.s.watering[i].ID == ev.ID {
			f.s.watering[i] = ev
			return nil
		}
	}
	return fmt.Errorf("watering event %s not found", ev.ID)
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Emit(ev events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
}

func (b *recordingBus) types() []events.Type {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]events.Type, 0, len(b.events))
	for _, ev := range b.events {
		out = append(out, ev.Type)
	}
	return out
}

func (b *recordingBus) ofType(t events.Type) []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []events.Event
	for _, ev := range b.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

type publishCall struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

type fakePublisher struct {
	err   error
	calls []publishCall
}

func (p *fakePublisher) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if p.err != nil {
		return p.err
	}
	p.calls = append(p.calls, publishCall{topic, payload, qos, retained})
	return nil
}

type fakeArchive struct {
	err     error
	written []models.SensorReading
}

func (a *fakeArchive) WriteReading(_ context.Context, _ string, r models.SensorReading) error {
	a.written = append(a.written, r)
	return a.err
}

func f64(v float64) *float64 { return &v }
