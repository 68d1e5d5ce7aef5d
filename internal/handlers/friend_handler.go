package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Adilet2201/ChatConnect/internal/services"
	"github.com/Adilet2201/ChatConnect/pkg/logger"
	"github.com/Adilet2201/ChatConnect/pkg/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FriendHandler manages HTTP endpoints for the friend-request lifecycle.
type FriendHandler struct {
	Service *services.FriendService
}

// NewFriendHandler initializes a new FriendHandler.
func NewFriendHandler(service *services.FriendService) *FriendHandler {
	return &FriendHandler{Service: service}
}

// actorAndOther extracts the authenticated user's id and the other user's id
// from the request body field named by key.
func actorAndOther(w http.ResponseWriter, r *http.Request, key string) (actor, other primitive.ObjectID, ok bool) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return actor, other, false
	}

	actor, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return actor, other, false
	}

	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return actor, other, false
	}
	defer r.Body.Close()

	other, err = primitive.ObjectIDFromHex(body[key])
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return actor, other, false
	}
	return actor, other, true
}

// SendRequestHandler sends a friend request to the target user.
func (h *FriendHandler) SendRequestHandler(w http.ResponseWriter, r *http.Request) {
	actor, target, ok := actorAndOther(w, r, "target_user_id")
	if !ok {
		return
	}

	if err := h.Service.SendRequest(r.Context(), actor, target); err != nil {
		logger.Log.Warnf("Failed to send friend request: %v", err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Friend request sent",
	})
}

// AcceptRequestHandler accepts a pending incoming friend request.
func (h *FriendHandler) AcceptRequestHandler(w http.ResponseWriter, r *http.Request) {
	actor, requester, ok := actorAndOther(w, r, "requester_id")
	if !ok {
		return
	}

	if err := h.Service.AcceptRequest(r.Context(), actor, requester); err != nil {
		logger.Log.Warnf("Failed to accept friend request: %v", err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Friend request accepted",
	})
}

// RejectRequestHandler rejects a pending incoming friend request.
func (h *FriendHandler) RejectRequestHandler(w http.ResponseWriter, r *http.Request) {
	actor, requester, ok := actorAndOther(w, r, "requester_id")
	if !ok {
		return
	}

	if err := h.Service.RejectRequest(r.Context(), actor, requester); err != nil {
		logger.Log.Warnf("Failed to reject friend request: %v", err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Friend request rejected",
	})
}

// CancelRequestHandler withdraws a friend request the user previously sent.
func (h *FriendHandler) CancelRequestHandler(w http.ResponseWriter, r *http.Request) {
	actor, receiver, ok := actorAndOther(w, r, "receiver_id")
	if !ok {
		return
	}

	if err := h.Service.CancelRequest(r.Context(), actor, receiver); err != nil {
		logger.Log.Warnf("Failed to cancel friend request: %v", err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Friend request canceled",
	})
}

// GetRelationshipsHandler returns the user's friends and pending requests.
func (h *FriendHandler) GetRelationshipsHandler(w http.ResponseWriter, r *http.Request) {
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

	rels, err := h.Service.GetRelationships(r.Context(), userID)
	if err != nil {
		logger.Log.Errorf("Failed to fetch relationships for user %s: %v", claims.UserID, err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, rels)
}
