package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/catalog-browser/internal/browser"
	"github.com/kahvecikaan/catalog-browser/internal/events"
)

const (
	writeWait = 10 * time.Second

	// largest client message accepted
	maxMessageSize = 512
)

// ViewportReporter records the viewport width a client reports
type ViewportReporter interface {
	ResizeViewport(ctx context.Context, sessionID string, width int) error
}

type Handler struct {
	Upgrader  websocket.Upgrader
	Log       hclog.Logger
	EventBus  *events.EventBus[any]
	Viewports ViewportReporter
}

// Message is pushed to the client for every event of its session
type Message struct {
	EventType string      `json:"event-type"`
	Data      interface{} `json:"data"`
}

// clientMessage is sent by the page, e.g. {"type":"viewport","width":375}
type clientMessage struct {
	Type  string `json:"type"`
	Width int    `json:"width"`
}

func NewHandler(log hclog.Logger, eventBus *events.EventBus[any], viewports ViewportReporter) *Handler {
	return &Handler{
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		Log:       log,
		EventBus:  eventBus,
		Viewports: viewports,
	}
}

// HandleWebSocket streams the events of the caller's session and records
// the viewport reports it sends. It expects the session in the request
// context.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	session, ok := browser.SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "No session", http.StatusBadRequest)
		return
	}

	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Error("Unable to upgrade to WebSocket", "error", err)
		return
	}
	defer conn.Close()

	subscriber := h.EventBus.SubscribeWhere(events.ForSession(session.ID))
	defer h.EventBus.Unsubscribe(subscriber)
	h.Log.Debug("WebSocket connected", "session", session.ID, "subscribers", h.EventBus.Len())

	done := make(chan struct{})
	go h.readPump(conn, session.ID, done)

	for {
		select {
		case event, ok := <-subscriber:
			if !ok {
				return
			}

			message, ok := toMessage(event)
			if !ok {
				h.Log.Warn("Unknown event type", "event", event)
				continue
			}

			payload, err := json.Marshal(message)
			if err != nil {
				h.Log.Error("Error marshalling message", "error", err)
				continue
			}

			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.Log.Error("Error writing message to WebSocket", "error", err)
				return
			}
		case <-done:
			h.Log.Debug("WebSocket connection closed by the client", "session", session.ID)
			return
		}
	}
}

func toMessage(event any) (Message, bool) {
	switch e := event.(type) {
	case events.ListLoaded:
		return Message{EventType: "list_loaded", Data: e}, true
	case events.PageChanged:
		return Message{EventType: "page_changed", Data: e}, true
	case events.VisibilityChanged:
		return Message{EventType: "visibility_changed", Data: e}, true
	case events.ProductSelected:
		return Message{EventType: "product_selected", Data: e}, true
	case events.DetailStateChanged:
		return Message{EventType: "detail_state", Data: e}, true
	default:
		return Message{}, false
	}
}

func (h *Handler) readPump(conn *websocket.Conn, sessionID string, done chan struct{}) {
	defer close(done)
	conn.SetReadLimit(maxMessageSize)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.Log.Error("Error reading message", "error", err)
			}
			break
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.Log.Debug("Ignoring malformed client message", "error", err)
			continue
		}

		switch msg.Type {
		case "viewport":
			if err := h.Viewports.ResizeViewport(context.Background(), sessionID, msg.Width); err != nil {
				h.Log.Debug("Unable to record viewport", "session", sessionID, "error", err)
			}
		default:
			h.Log.Debug("Ignoring unknown client message", "type", msg.Type)
		}
	}
}
