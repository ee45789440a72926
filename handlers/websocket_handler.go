package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/Dosada05/medcamp/realtime"
	"github.com/Dosada05/medcamp/services"
)

type WebSocketHandler struct {
	hub      *realtime.Hub
	camps    services.CampService
	upgrader websocket.Upgrader
}

// NewWebSocketHandler; пустой allowedOrigins разрешает любой Origin (development).
func NewWebSocketHandler(hub *realtime.Hub, camps services.CampService, allowedOrigins []string) *WebSocketHandler {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[strings.TrimRight(o, "/")] = struct{}{}
	}
	return &WebSocketHandler{
		hub:   hub,
		camps: camps,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if len(origins) == 0 || origin == "" {
					return true
				}
				_, ok := origins[origin]
				return ok
			},
		},
	}
}

// ServeCampWs godoc
// @Summary Живой счетчик участников лагеря (WebSocket)
// @Tags realtime
// @Param campID path string true "Camp ID"
// @Success 101 "Switching Protocols"
// @Failure 404 {object} map[string]string "Лагерь не найден"
// @Router /ws/camps/{campID} [get]
func (h *WebSocketHandler) ServeCampWs(w http.ResponseWriter, r *http.Request) {
	campID, err := pathParam(r, "campID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if _, err := h.camps.Get(r.Context(), campID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.serve(w, r, realtime.CampRoom(campID))
}

// ServeOrganizersWs godoc
// @Summary Лента событий по заявкам для организаторов (WebSocket)
// @Tags realtime
// @Success 101 "Switching Protocols"
// @Failure 403 {object} map[string]string "Только организатор"
// @Security BearerAuth
// @Router /ws/organizers [get]
func (h *WebSocketHandler) ServeOrganizersWs(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, realtime.OrganizersRoom)
}

func (h *WebSocketHandler) serve(w http.ResponseWriter, r *http.Request, room string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отправляет HTTP ошибку клиенту.
		slog.WarnContext(r.Context(), "websocket upgrade failed", slog.String("room", room), slog.Any("error", err))
		return
	}

	client := &realtime.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: room,
	}
	if !h.hub.Join(client) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	slog.DebugContext(r.Context(), "websocket client connected", slog.String("room", room))
}
