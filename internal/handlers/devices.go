package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"plant_watering/internal/models"
	"plant_watering/internal/mqtt"
	"plant_watering/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusOK   = "ok"
	statusSent = "sent"

	mqttConnected    = "connected"
	mqttDisconnected = "disconnected"

	errInternal        = "internal error"
	errInvalidBodyPref = "invalid body: "
)

// WaterRequest is the body of the water endpoint. Zero uses the device default.
type WaterRequest struct {
	DurationSec int `json:"durationSec,omitempty" example:"10"`
}

// statusFor maps service and transport errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidConfig),
		errors.Is(err, service.ErrInvalidCommand),
		errors.Is(err, mqtt.ErrInvalidTopic),
		errors.Is(err, mqtt.ErrInvalidQoS):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrDeviceNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrWateringInProgress):
		return http.StatusConflict
	case errors.Is(err, mqtt.ErrNotConnected),
		errors.Is(err, mqtt.ErrPublishFailed),
		errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError logs err and writes the mapped status. Internal
// details are only exposed for client-side and availability errors.
func (h *Handler) respondServiceError(c *gin.Context, err error, logKey string, kv ...interface{}) {
	code := statusFor(err)
	fields := append([]interface{}{"err", err, "status", code}, kv...)
	if code >= http.StatusInternalServerError {
		h.log.Errorw(logKey, fields...)
	} else {
		h.log.Infow(logKey, fields...)
	}

	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = errInternal
	}
	c.JSON(code, gin.H{"error": msg})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, mqtt, subscribers"
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	subscribers := 0
	if h.bus != nil {
		subscribers = h.bus.SubscriberCount()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      statusOK,
		"mqtt":        h.linkState(),
		"subscribers": subscribers,
	})
}

// @Summary      Water a plant
// @Description  Publishes a water command and opens a watering event
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        mac   path  string        true   "Device MAC address"
// @Param        body  body  WaterRequest  false  "Duration override"
// @Success      202   {object}  models.WateringEvent
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/devices/{mac}/water [post]
// @Security     BearerAuth
func (h *Handler) waterDevice(c *gin.Context) {
	mac := c.Param("mac")
	var req WaterRequest
	// An empty body is allowed.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	ev, err := h.services.Water(c.Request.Context(), mac, req.DurationSec)
	if err != nil {
		h.respondServiceError(c, err, "api_water_failed", "mac", mac)
		return
	}
	c.JSON(http.StatusAccepted, ev)
}

// @Summary      Push device configuration
// @Description  Validates and publishes a retained config message
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        mac   path  string               true  "Device MAC address"
// @Param        body  body  models.DeviceConfig  true  "Configuration"
// @Success      202   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/devices/{mac}/config [post]
// @Security     BearerAuth
func (h *Handler) pushConfig(c *gin.Context) {
	mac := c.Param("mac")
	var cfg models.DeviceConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	if err := h.services.PushConfig(c.Request.Context(), mac, cfg); err != nil {
		h.respondServiceError(c, err, "api_push_config_failed", "mac", mac)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": statusSent})
}

// @Summary      Send raw command
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        mac   path  string          true  "Device MAC address"
// @Param        body  body  models.Command  true  "Command"
// @Success      202   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/devices/{mac}/command [post]
// @Security     BearerAuth
func (h *Handler) sendCommand(c *gin.Context) {
	mac := c.Param("mac")
	var cmd models.Command
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	if err := h.services.SendCommand(mac, cmd); err != nil {
		h.respondServiceError(c, err, "api_send_command_failed", "mac", mac, "action", cmd.Action)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": statusSent, "action": cmd.Action})
}
