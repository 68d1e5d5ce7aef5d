package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Adilet2201/ChatConnect/internal/realtime"
	jwtutil "github.com/Adilet2201/ChatConnect/pkg/jwt"
	"github.com/Adilet2201/ChatConnect/pkg/logger"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler owns the websocket side: one long-lived read loop per
// connection, registered into the presence registry and the room hub.
type WSHandler struct {
	Presence  *realtime.Presence
	Hub       *realtime.Hub
	JWTSecret string
}

func NewWSHandler(presence *realtime.Presence, hub *realtime.Hub, jwtSecret string) *WSHandler {
	return &WSHandler{Presence: presence, Hub: hub, JWTSecret: jwtSecret}
}

type joinRoomPayload struct {
	Room string `json:"room"`
}

type roomMessagePayload struct {
	Room    string          `json:"room"`
	Payload json.RawMessage `json:"payload"`
}

// ServeWS authenticates the token from the query string, upgrades the
// connection and runs its read loop. The deferred cleanup runs on every exit
// path (close, timeout, error), so a dead connection always leaves its rooms
// and the presence registry.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}
	claims, err := jwtutil.ValidateToken(token, h.JWTSecret)
	if err != nil {
		logger.Log.Warnf("WebSocket auth failed: %v", err)
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Warnf("WebSocket upgrade failed: %v", err)
		return
	}

	client := realtime.NewClient(claims.UserID, conn)
	logger.Log.WithFields(map[string]interface{}{
		"userID": claims.UserID,
		"client": client.ID,
	}).Info("WebSocket connected")

	if first := h.Presence.Register(client); first {
		h.Hub.Broadcast("presence.online", map[string]string{"user_id": claims.UserID}, client)
	}

	defer func() {
		h.Hub.LeaveAll(client)
		if last := h.Presence.Unregister(client); last {
			h.Hub.Broadcast("presence.offline", map[string]string{"user_id": claims.UserID}, client)
		}
		client.Close()
		logger.Log.WithFields(map[string]interface{}{
			"userID": claims.UserID,
			"client": client.ID,
		}).Info("WebSocket disconnected")
	}()

	for {
		ev, err := client.ReadEvent()
		if err != nil {
			return
		}

		switch ev.Event {
		case "room.join":
			var p joinRoomPayload
			if err := json.Unmarshal(ev.Data, &p); err != nil || p.Room == "" {
				continue
			}
			h.Hub.JoinRoom(client, p.Room)
			_ = client.Send("room.join", map[string]string{"room": p.Room})

		case "message.sent":
			var p roomMessagePayload
			if err := json.Unmarshal(ev.Data, &p); err != nil || p.Room == "" {
				continue
			}
			h.Hub.SendToRoom(p.Room, "message.sent", map[string]interface{}{
				"room":      p.Room,
				"sender_id": claims.UserID,
				"payload":   p.Payload,
			}, client)

		default:
			logger.Log.WithField("event", ev.Event).Debug("Ignoring unknown websocket event")
		}
	}
}
