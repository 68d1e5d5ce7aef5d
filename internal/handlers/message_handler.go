package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Adilet2201/ChatConnect/internal/realtime"
	"github.com/Adilet2201/ChatConnect/internal/services"
	"github.com/Adilet2201/ChatConnect/pkg/logger"
	"github.com/Adilet2201/ChatConnect/pkg/middleware"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MessageHandler exposes direct messaging over HTTP. Messages are persisted
// first; live delivery to the receiver's connections is best-effort.
type MessageHandler struct {
	Service *services.MessageService
	Hub     *realtime.Hub
}

func NewMessageHandler(service *services.MessageService, hub *realtime.Hub) *MessageHandler {
	return &MessageHandler{Service: service, Hub: hub}
}

type sendMessageRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
	Message    string `json:"message" validate:"required"`
}

// SendMessageHandler stores a message and pushes it to the receiver if they
// are online.
func (h *MessageHandler) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	senderID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := validate.Struct(req); err != nil {
		http.Error(w, "Receiver and message are required", http.StatusBadRequest)
		return
	}

	receiverID, err := primitive.ObjectIDFromHex(req.ReceiverID)
	if err != nil {
		http.Error(w, "Invalid receiver ID", http.StatusBadRequest)
		return
	}

	msg, err := h.Service.SendMessage(r.Context(), senderID, receiverID, req.Message)
	if err != nil {
		logger.Log.Warnf("Failed to send message from %s: %v", claims.UserID, err)
		respondError(w, err)
		return
	}

	// Live delivery misses are expected when the receiver is offline; the
	// stored message is the source of truth.
	h.Hub.SendToUser(req.ReceiverID, "message.sent", msg)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Message sent",
		"data":    msg,
	})
}

// GetHistoryHandler returns the full conversation with a friend, oldest
// first.
func (h *MessageHandler) GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	friendID, err := primitive.ObjectIDFromHex(vars["friendId"])
	if err != nil {
		http.Error(w, "Invalid friend ID", http.StatusBadRequest)
		return
	}

	messages, err := h.Service.GetHistory(r.Context(), userID, friendID)
	if err != nil {
		logger.Log.Errorf("Failed to get chat history: %v", err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"messages": messages,
	})
}
