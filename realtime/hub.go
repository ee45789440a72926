package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Dosada05/medcamp/notify"
)

// OrganizersRoom receives every registration event with participant details.
const OrganizersRoom = "organizers"

// CampRoom is the public room of one camp; it only sees counters.
func CampRoom(campID string) string {
	return "camp_" + campID
}

type Client struct {
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte
	Room     string
	IsClosed bool
	Mu       sync.Mutex
}

type WebSocketMessage struct {
	Type    string      `json:"type"`              // Тип события, например "registration.paid"
	Payload interface{} `json:"payload"`           // Полезная нагрузка
	RoomID  string      `json:"room_id,omitempty"` // Комната, в которую отправлено сообщение
}

// CampUpdate is the payload sent to public camp rooms.
type CampUpdate struct {
	CampID           string `json:"camp_id"`
	ParticipantCount int    `json:"participant_count"`
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

type Hub struct {
	Register   chan *Client
	Unregister chan *Client
	done       chan struct{}
	rooms      map[string]map[*Client]bool
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
		rooms:      make(map[string]map[*Client]bool),
	}
}

// Join registers c unless the hub has stopped.
func (h *Hub) Join(c *Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Run обслуживает регистрацию клиентов до отмены ctx.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			slog.Debug("websocket client registered", slog.String("room", client.Room), slog.Int("clients", len(h.rooms[client.Room])))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room][client]; ok {
				client.close()
				delete(h.rooms[client.Room], client)
				if len(h.rooms[client.Room]) == 0 {
					delete(h.rooms, client.Room)
				}
				slog.Debug("websocket client unregistered", slog.String("room", client.Room))
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room, clients := range h.rooms {
		for client := range clients {
			client.close()
		}
		delete(h.rooms, room)
	}
}

// ClientsInRoom returns how many clients are subscribed to roomID.
func (h *Hub) ClientsInRoom(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// BroadcastToRoom отправляет сообщение всем клиентам в указанной комнате.
// Медленные клиенты с заполненным буфером пропускают сообщение.
func (h *Hub) BroadcastToRoom(roomID string, message interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	roomClients, ok := h.rooms[roomID]
	if !ok {
		return
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		slog.Error("failed to marshal websocket message", slog.String("room", roomID), slog.Any("error", err))
		return
	}

	for client := range roomClients {
		client.Mu.Lock()
		if client.IsClosed {
			client.Mu.Unlock()
			continue
		}
		select {
		case client.Send <- messageBytes:
		default:
			slog.Warn("websocket client buffer full, message dropped", slog.String("room", roomID))
		}
		client.Mu.Unlock()
	}
}

// Notify makes the hub a notification sink: organizers get the full event,
// the camp room gets the new participant count.
func (h *Hub) Notify(ctx context.Context, e notify.Event) error {
	h.BroadcastToRoom(OrganizersRoom, WebSocketMessage{Type: string(e.Type), Payload: e, RoomID: OrganizersRoom})

	room := CampRoom(e.CampID)
	h.BroadcastToRoom(room, WebSocketMessage{
		Type:    string(e.Type),
		Payload: CampUpdate{CampID: e.CampID, ParticipantCount: e.ParticipantCount},
		RoomID:  room,
	})
	return nil
}

func (c *Client) close() {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	if !c.IsClosed {
		close(c.Send)
		c.IsClosed = true
	}
}

func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.Hub.Unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		// Клиенты только слушают; входящие сообщения игнорируются.
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("websocket read error", slog.String("room", c.Room), slog.Any("error", err))
			}
			return
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				slog.Warn("websocket write error", slog.String("room", c.Room), slog.Any("error", err))
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
