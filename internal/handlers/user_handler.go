package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Adilet2201/ChatConnect/internal/config"
	"github.com/Adilet2201/ChatConnect/internal/services"
	jwtutil "github.com/Adilet2201/ChatConnect/pkg/jwt"
	"github.com/Adilet2201/ChatConnect/pkg/logger"
	"github.com/Adilet2201/ChatConnect/pkg/middleware"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate = validator.New()

// UserHandler handles HTTP requests related to user operations.
type UserHandler struct {
	Service *services.UserService
	Friends *services.FriendService
	Config  *config.Config
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(service *services.UserService, friends *services.FriendService, cfg *config.Config) *UserHandler {
	return &UserHandler{
		Service: service,
		Friends: friends,
		Config:  cfg,
	}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterUserHandler handles user registration.
func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		logger.Log.Warnf("Invalid registration payload: %v", err)
		http.Error(w, "Username, email and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.Service.RegisterUser(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		logger.Log.Warnf("Failed to register user: %v", err)
		respondError(w, err)
		return
	}

	logger.Log.WithField("userID", user.ID.Hex()).Info("User registered successfully")
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"user":    user.Public(),
	})
}

// LoginUserHandler handles user login and issues a JWT.
func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.Service.AuthenticateUser(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	token, err := jwtutil.GenerateToken(user.ID.Hex(), user.Username, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		logger.Log.Errorf("Failed to generate JWT token: %v", err)
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	logger.Log.WithField("userID", user.ID.Hex()).Info("User logged in successfully")
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"token":   token,
		"user":    user.Public(),
	})
}

// MeHandler returns the logged-in user's profile with populated friends and
// pending requests.
func (h *UserHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
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

	user, err := h.Service.GetUser(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	rels, err := h.Friends.GetRelationships(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":           true,
		"user":              user.Public(),
		"friends":           rels.Friends,
		"requests_sent":     rels.Sent,
		"requests_received": rels.Received,
	})
}

// SearchUsersHandler runs a case-insensitive search over usernames and
// emails.
func (h *UserHandler) SearchUsersHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		http.Error(w, "Search query required", http.StatusBadRequest)
		return
	}

	users, err := h.Service.SearchUsers(r.Context(), query)
	if err != nil {
		logger.Log.Errorf("Search failed: %v", err)
		respondError(w, err)
		return
	}

	if len(users) == 0 {
		respondJSON(w, http.StatusNotFound, map[string]interface{}{
			"success": false,
			"message": "No users found",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"users":   users,
	})
}

// AvailabilityHandler reports whether a username can still be registered.
func (h *UserHandler) AvailabilityHandler(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		http.Error(w, "Username required", http.StatusBadRequest)
		return
	}

	available, err := h.Service.UsernameAvailable(r.Context(), username)
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]bool{"available": false})
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"available": available})
}

// GetAllUsersHandler returns every registered user.
func (h *UserHandler) GetAllUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.GetAllUsers(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"users":   users,
	})
}
