package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zaqqye/gazetrack_backend/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 256
)

// Coordinates is a gaze or mouse position in a live sample.
type Coordinates struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Sample struct {
	MeasurementID uint         `json:"measurement_id"`
	Date          time.Time    `json:"date"`
	Gaze          *Coordinates `json:"gaze,omitempty"`
	Mouse         *Coordinates `json:"mouse,omitempty"`
}

// SamplePayload is pushed to dashboards each time a batch is stored.
type SamplePayload struct {
	Type      string   `json:"type"`
	SubjectID uint     `json:"subject_id"`
	Samples   []Sample `json:"samples"`
}

type monitoringMessage struct {
	subjectID uint
	payload   []byte
}

// MonitoringHub fans committed samples out to websocket clients. A client
// either follows one subject or all of them.
type MonitoringHub struct {
	log        *zap.Logger
	register   chan *monitoringClient
	unregister chan *monitoringClient
	broadcast  chan monitoringMessage
	clients    map[*monitoringClient]struct{}
	done       chan struct{}
}

func NewMonitoringHub(log *zap.Logger) *MonitoringHub {
	return &MonitoringHub{
		log:        log,
		register:   make(chan *monitoringClient),
		unregister: make(chan *monitoringClient),
		broadcast:  make(chan monitoringMessage, 256),
		clients:    make(map[*monitoringClient]struct{}),
		done:       make(chan struct{}),
	}
}

// Run serves the hub until ctx is done. It must be called once.
func (h *MonitoringHub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return
		case client := <-h.register:
			h.clients[client] = struct{}{}
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
			}
		case msg := <-h.broadcast:
			for client := range h.clients {
				if client.subjectID != 0 && client.subjectID != msg.subjectID {
					continue
				}
				select {
				case client.send <- msg.payload:
				default:
					h.drop(client)
				}
			}
		}
	}
}

func (h *MonitoringHub) drop(client *monitoringClient) {
	delete(h.clients, client)
	close(client.send)
	client.conn.Close()
}

// PublishSamples queues the samples for delivery. It never blocks; when the
// queue is full the batch is dropped for live viewers only.
func (h *MonitoringHub) PublishSamples(subjectID uint, measurements []models.Measurement) {
	if h == nil {
		return
	}
	payload := SamplePayload{Type: "samples", SubjectID: subjectID, Samples: make([]Sample, 0, len(measurements))}
	for _, m := range measurements {
		s := Sample{MeasurementID: m.ID, Date: m.Date}
		if m.GazePoint != nil {
			s.Gaze = &Coordinates{X: m.GazePoint.X, Y: m.GazePoint.Y}
		}
		if m.MousePoint != nil {
			s.Mouse = &Coordinates{X: m.MousePoint.X, Y: m.MousePoint.Y}
		}
		payload.Samples = append(payload.Samples, s)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("ws: failed to marshal payload", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- monitoringMessage{subjectID: subjectID, payload: data}:
	default:
		h.log.Warn("ws: broadcast queue full, dropping samples", zap.Uint("subject_id", subjectID))
	}
}

func (h *MonitoringHub) add(client *monitoringClient) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

type monitoringClient struct {
	hub       *MonitoringHub
	conn      *websocket.Conn
	send      chan []byte
	subjectID uint // 0 follows every subject
}

func newMonitoringClient(hub *MonitoringHub, conn *websocket.Conn, subjectID uint) *monitoringClient {
	return &monitoringClient{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		subjectID: subjectID,
	}
}

func (c *monitoringClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *monitoringClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
