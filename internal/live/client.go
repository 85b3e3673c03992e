package live

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"mesob/internal/models"
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // KDS screens and waitress tablets connect cross-origin
	},
}

// StatusUpdater is the slice of the order service a live connection
// drives: one station transition per update_status message.
type StatusUpdater interface {
	UpdateStationStatus(orderID uint, station models.PreparationStation, newStatus models.OrderStatus) (*models.Order, error)
}

// Client maintains one WebSocket connection with a waitress tablet or
// a station display.
type Client struct {
	id      string
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	updater StatusUpdater
}

// ServeWS upgrades the request and starts the connection's pumps.
func ServeWS(hub *Hub, updater StatusUpdater, c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		hub.log.Error("LIVE", fmt.Sprintf("failed to upgrade connection: %v", err))
		return
	}

	client := &Client{
		id:      uuid.New().String(),
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, 256),
		updater: updater,
	}
	hub.register(client)

	go client.writePump()
	go client.readPump()
}

// readPump pumps messages from the WebSocket connection to the handler
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(64 * 1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Error("LIVE", fmt.Sprintf("websocket error: %v", err))
			}
			break
		}
		c.handleMessage(message)
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage validates the envelope and dispatches on its type.
// Failures are reported to this connection only; they never silently
// drop, since the client otherwise cannot know its action was lost.
func (c *Client) handleMessage(message []byte) {
	var env Envelope
	if err := json.Unmarshal(message, &env); err != nil {
		c.sendError("malformed message envelope")
		return
	}

	switch env.Type {
	case MsgJoin:
		c.handleJoin(env.Payload)
	case MsgUpdateStatus:
		c.handleUpdateStatus(env.Payload)
	default:
		c.sendError(fmt.Sprintf("unknown message type %q", env.Type))
	}
}

func (c *Client) handleJoin(payload json.RawMessage) {
	var join JoinPayload
	if err := json.Unmarshal(payload, &join); err != nil {
		c.sendError("malformed join payload")
		return
	}
	if !join.Role.IsValid() {
		c.sendError(fmt.Sprintf("unknown role %q", join.Role))
		return
	}

	// Each role implies its topic set: a waitress her own identity
	// topic, a station display that station's topic, the owner every
	// station topic.
	var topics []string
	switch join.Role {
	case models.RoleWaitress:
		if join.Identity == "" {
			c.sendError("waitress join needs an identity")
			return
		}
		topics = []string{join.Identity}
	case models.RoleKitchen:
		topics = []string{string(models.StationKitchen)}
	case models.RoleJuiceBar:
		topics = []string{string(models.StationJuiceBar)}
	case models.RoleOwner:
		for _, station := range models.AllStations {
			topics = append(topics, string(station))
		}
	}

	c.hub.Join(c, topics...)
	c.hub.log.Info("LIVE", fmt.Sprintf("client %s joined as %s", c.id, join.Role))
}

func (c *Client) handleUpdateStatus(payload json.RawMessage) {
	var update UpdateStatusPayload
	if err := json.Unmarshal(payload, &update); err != nil {
		c.sendError("malformed update_status payload")
		return
	}

	// Each update runs as its own task; correctness comes from the
	// atomicity of the store operation, not from serializing here.
	go func() {
		if _, err := c.updater.UpdateStationStatus(update.OrderID, update.Station, update.NewStatus); err != nil {
			c.sendError(err.Error())
		}
	}()
}

// sendError reports a failure back to the originating connection only.
func (c *Client) sendError(message string) {
	data, err := encodeEnvelope(MsgUpdateError, ErrorPayload{Message: message})
	if err != nil {
		return
	}
	c.hub.trySend(c, data)
}
