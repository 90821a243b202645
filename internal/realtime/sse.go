package realtime

import (
	"io"
	"strings"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
)

const keepAlive = 25 * time.Second

// Stream serves events as text/event-stream. The optional types query
// parameter takes a comma separated list of event types.
func (h *Hub) Stream(c *gin.Context) {
	var types []string
	if raw := c.Query("types"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			types = append(types, strings.TrimSpace(t))
		}
	}
	sub := h.Subscribe(types...)
	defer h.Unsubscribe(sub)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	c.SSEvent("ready", gin.H{"types": types})
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-sub.C:
			if !ok {
				return false
			}
			c.Render(-1, sse.Event{Id: ev.ID, Event: ev.Type, Data: ev})
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
