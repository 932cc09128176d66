package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"plant_watering/internal/config"
	"plant_watering/internal/events"
	"plant_watering/internal/logger"
	"plant_watering/internal/models"
	"plant_watering/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	enabled  bool
	subject  string
	parseErr error

	lastParseToken string
}

func (m *mockAuth) Enabled() bool { return m.enabled }
func (m *mockAuth) ParseToken(token string) (string, error) {
	m.lastParseToken = token
	return m.subject, m.parseErr
}

type mockCommands struct {
	waterEvent models.WateringEvent
	waterErr   error
	configErr  error
	commandErr error

	waterCalls   int
	configCalls  int
	commandCalls int
	lastMAC      string
	lastDuration int
	lastConfig   models.DeviceConfig
	lastCommand  models.Command
}

func (m *mockCommands) SendCommand(mac string, cmd models.Command) error {
	m.commandCalls++
	m.lastMAC = mac
	m.lastCommand = cmd
	return m.commandErr
}
func (m *mockCommands) PushConfig(ctx context.Context, mac string, cfg models.DeviceConfig) error {
	m.configCalls++
	m.lastMAC = mac
	m.lastConfig = cfg
	return m.configErr
}
func (m *mockCommands) Water(ctx context.Context, mac string, durationSec int) (models.WateringEvent, error) {
	m.waterCalls++
	m.lastMAC = mac
	m.lastDuration = durationSec
	return m.waterEvent, m.waterErr
}

type mockLink struct{ up bool }

func (m mockLink) IsConnected() bool { return m.up }

// ---- Shared Test Helpers ----

func newTestBus() *events.Bus {
	return events.NewBus(config.BusConfig{SubscriberBuffer: 16}, logger.Nop())
}

func newTestRouter(s *service.Service, bus *events.Bus, link LinkStatus) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, bus, link, nil)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func doRequest(r http.Handler, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vv := range header {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
