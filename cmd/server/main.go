package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/Adilet2201/ChatConnect/internal/config"
	"github.com/Adilet2201/ChatConnect/internal/database"
	"github.com/Adilet2201/ChatConnect/internal/handlers"
	"github.com/Adilet2201/ChatConnect/internal/realtime"
	"github.com/Adilet2201/ChatConnect/internal/repository"
	"github.com/Adilet2201/ChatConnect/internal/services"
	"github.com/Adilet2201/ChatConnect/pkg/logger"
	"github.com/Adilet2201/ChatConnect/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	// Load configuration from .env file / environment
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Connect to MongoDB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	// --- Services ---
	userService := services.NewUserService(userRepo)
	friendService := services.NewFriendService(userRepo)
	messageService := services.NewMessageService(messageRepo, userRepo)

	// --- Realtime ---
	presence := realtime.NewPresence(userRepo)
	hub := realtime.NewHub(presence)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, friendService, cfg)
	friendHandler := handlers.NewFriendHandler(friendService)
	messageHandler := handlers.NewMessageHandler(messageService, hub)
	wsHandler := handlers.NewWSHandler(presence, hub, cfg.JWTSecret)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Public routes
	router.HandleFunc("/api/register", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/api/login", userHandler.LoginUserHandler).Methods("POST")
	router.HandleFunc("/api/users/availability", userHandler.AvailabilityHandler).Methods("GET")

	// Protected routes
	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protected.HandleFunc("/me", userHandler.MeHandler).Methods("GET")
	protected.HandleFunc("/users", userHandler.GetAllUsersHandler).Methods("GET")
	protected.HandleFunc("/search", userHandler.SearchUsersHandler).Methods("GET")
	protected.HandleFunc("/send-request", friendHandler.SendRequestHandler).Methods("POST")
	protected.HandleFunc("/accept-request", friendHandler.AcceptRequestHandler).Methods("POST")
	protected.HandleFunc("/reject-request", friendHandler.RejectRequestHandler).Methods("POST")
	protected.HandleFunc("/cancel-request", friendHandler.CancelRequestHandler).Methods("POST")
	protected.HandleFunc("/friends", friendHandler.GetRelationshipsHandler).Methods("GET")
	protected.HandleFunc("/send-message", messageHandler.SendMessageHandler).Methods("POST")
	protected.HandleFunc("/messages/{friendId}", messageHandler.GetHistoryHandler).Methods("GET")

	// Realtime endpoint (token is carried in the query string)
	router.HandleFunc("/ws", wsHandler.ServeWS)

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handler))
}
