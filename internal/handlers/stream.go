package handlers

import (
	"io"
	"strings"
	"time"

	"plant_watering/internal/events"

	"github.com/gin-gonic/gin"
)

const (
	eventConnected = "connected"
	eventPing      = "ping"
	sseKeepAlive   = 15 * time.Second
)

// kindFilter restricts a stream to some event kinds. nil lets everything through.
type kindFilter map[events.Type]struct{}

// parseKinds reads ?types=reading,alert. Unknown kinds are ignored.
func parseKinds(c *gin.Context) kindFilter {
	raw := c.Query("types")
	if raw == "" {
		return nil
	}
	f := kindFilter{}
	for _, s := range strings.Split(raw, ",") {
		switch t := events.Type(strings.TrimSpace(s)); t {
		case events.TypeReading, events.TypeAlert, events.TypeStatus, events.TypeWatering:
			f[t] = struct{}{}
		}
	}
	if len(f) == 0 {
		return nil
	}
	return f
}

func (f kindFilter) allows(t events.Type) bool {
	if f == nil {
		return true
	}
	_, ok := f[t]
	return ok
}

// @Summary      Live event stream
// @Description  Server-Sent Events; the event name is the event kind
// @Tags         events
// @Produce      text/event-stream
// @Param        types  query  string  false  "Comma separated kinds: reading,alert,status,watering"
// @Router       /events [get]
func (h *Handler) streamEvents(c *gin.Context) {
	kinds := parseKinds(c)
	sub := h.bus.Subscribe(0)
	defer h.bus.Unsubscribe(sub)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent(eventConnected, gin.H{"mqtt": h.linkState()})
	c.Writer.Flush()

	keepAlive := time.NewTicker(sseKeepAlive)
	defer keepAlive.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-keepAlive.C:
			c.SSEvent(eventPing, time.Now().Unix())
			return true
		case ev, ok := <-sub.C():
			if !ok {
				return false
			}
			if kinds.allows(ev.Type) {
				c.SSEvent(string(ev.Type), ev)
			}
			return true
		}
	})
	h.log.Debugw("sse_client_gone", "dropped", sub.Dropped())
}
