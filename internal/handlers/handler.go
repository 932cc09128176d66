package handlers

import (
	"plant_watering/internal/events"
	"plant_watering/internal/logger"
	"plant_watering/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// EventSource is satisfied by *events.Bus.
type EventSource interface {
	Subscribe(buffer int) *events.Subscription
	Unsubscribe(s *events.Subscription)
	SubscriberCount() int
}

// LinkStatus reports whether the broker session is up. Satisfied by *mqtt.Manager.
type LinkStatus interface {
	IsConnected() bool
}

// Handler wires HTTP layer to services, the event bus and logging.
type Handler struct {
	services *service.Service
	bus      EventSource
	link     LinkStatus
	log      *logger.Logger

	// origins accepted on /ws; same-host requests are always accepted.
	allowedOrigins []string
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, bus EventSource, link LinkStatus, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{services: services, bus: bus, link: link, log: log}
}

// WithAllowedOrigins sets the browser origins allowed to open /ws,
// normally cors.allowed_origins. "*" allows any origin.
func (h *Handler) WithAllowedOrigins(origins []string) *Handler {
	h.allowedOrigins = origins
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)

	// Live event streams for dashboards
	router.GET("/events", h.streamEvents)
	router.GET("/ws", h.wsConnect)

	// Versioned API endpoints (protected when a secret is configured)
	h.registerAPIRoutes(router)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.authMiddleware)
	{
		h.registerDeviceRoutes(api)
	}
}

func (h *Handler) registerDeviceRoutes(api *gin.RouterGroup) {
	device := api.Group("/devices/:mac")
	{
		// Body example: {"durationSec":10}
		device.POST("/water", h.waterDevice)
		device.POST("/config", h.pushConfig)
		device.POST("/command", h.sendCommand)
	}
}

func (h *Handler) linkState() string {
	if h.link != nil && h.link.IsConnected() {
		return mqttConnected
	}
	return mqttDisconnected
}
