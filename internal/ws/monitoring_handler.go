package ws

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// originChecker accepts requests without an Origin header, origins on the
// allowed list ("*" allows any) and origins matching the request host.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(strings.TrimRight(o, "/"), origin) {
				return true
			}
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
}

// MonitoringHandler upgrades the request and streams samples. The optional
// subject_id query parameter restricts the stream to one subject. Browser
// origins other than the serving host must be listed in allowedOrigins.
func MonitoringHandler(hub *MonitoringHub, allowedOrigins []string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{CheckOrigin: originChecker(allowedOrigins)}
	return func(c *gin.Context) {
		var subjectID uint
		if raw := c.Query("subject_id"); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil || id == 0 {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid subject_id"})
				return
			}
			subjectID = uint(id)
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		client := newMonitoringClient(hub, conn, subjectID)
		if !hub.add(client) {
			conn.Close()
			return
		}

		go client.writePump()
		client.readPump()
	}
}
