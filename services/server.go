package services

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prepmate/backend/repository"
	ws "github.com/prepmate/backend/websocket"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Server holds all server dependencies
type Server struct {
	config      *Config
	mongoClient *mongo.Client
	gormDB      *gorm.DB

	sessionRepo *repository.SessionRepository
	tagRepo     *repository.TagRepository
	reportRepo  *repository.ReportRepository

	geminiService  *GeminiService
	whisperService *WhisperService
	transcriber    Transcriber
	exportService  *ExportService
	assembler      *AudioAssembler

	uploadEndpoints    *UploadEndpoints
	answerEndpoints    *AnswerEndpoints
	sessionEndpoints   *SessionEndpoints
	analyticsEndpoints *AnalyticsEndpoints
	reportEndpoints    *ReportEndpoints
	tagEndpoints       *TagEndpoints
	websocketHandler   *WebSocketHandler

	wsHub    *ws.Hub
	upgrader websocket.Upgrader
}

// NewServer creates a new server instance
func NewServer(config *Config) *Server {
	return &Server{
		config: config,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return CheckOrigin(r, config.WebSocket.AllowedOrigins)
			},
		},
	}
}

// SetStores sets the database connections and their repositories.
func (s *Server) SetStores(mongoClient *mongo.Client, mongoDB *mongo.Database, gormDB *gorm.DB) {
	s.mongoClient = mongoClient
	s.gormDB = gormDB
	s.sessionRepo = repository.NewSessionRepository(mongoDB)
	s.tagRepo = repository.NewTagRepository(mongoDB)
	s.reportRepo = repository.NewReportRepository(gormDB)
}

// InitializeServices initializes all server services
func (s *Server) InitializeServices() error {
	if s.config.AI.GeminiAPIKey != "" {
		s.geminiService = NewGeminiService(s.config.AI.GeminiAPIKey)
		slog.Info("Gemini service initialized")
	}

	// Whisper server is the preferred transcriber; Gemini is the fallback
	if s.config.AI.WhisperURL != "" {
		s.whisperService = NewWhisperService(s.config.AI.WhisperURL)
		s.transcriber = s.whisperService
		slog.Info("Whisper transcription service initialized", "url", s.config.AI.WhisperURL)
	} else if s.geminiService != nil {
		s.transcriber = s.geminiService
		slog.Info("Using Gemini for transcription")
	} else {
		slog.Warn("No transcription service configured, transcription endpoints will be unavailable")
	}

	s.exportService = NewExportService(NewPDFRenderer())
	s.assembler = NewAudioAssembler()

	s.uploadEndpoints = NewUploadEndpoints(s.sessionRepo, s.geminiService)
	s.answerEndpoints = NewAnswerEndpoints(s.sessionRepo, s.reportRepo, s.transcriber, s.geminiService)
	s.sessionEndpoints = NewSessionEndpoints(s.sessionRepo)
	s.analyticsEndpoints = NewAnalyticsEndpoints(s.sessionRepo, s.tagRepo, s.exportService)
	s.reportEndpoints = NewReportEndpoints(s.reportRepo, s.sessionRepo, s.exportService)
	s.tagEndpoints = NewTagEndpoints(s.tagRepo, s.sessionRepo)
	s.websocketHandler = NewWebSocketHandler(s.assembler, s.transcriber, s.sessionRepo)

	s.wsHub = ws.NewHub()
	go s.wsHub.Run()

	return nil
}

// SetupRoutes configures all HTTP routes
func (s *Server) SetupRoutes() *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health endpoint
	r.Get("/health", s.healthHandler)

	// API v1 route group
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", s.apiV1Handler)
		r.Get("/ws", s.websocketHandlerFunc)

		s.uploadEndpoints.RegisterRoutes(r)
		s.answerEndpoints.RegisterRoutes(r)
		s.reportEndpoints.RegisterRoutes(r)
		s.tagEndpoints.RegisterRoutes(r)

		r.Route("/sessions", func(r chi.Router) {
			s.analyticsEndpoints.RegisterRoutes(r)
			s.sessionEndpoints.RegisterRoutes(r)
			s.tagEndpoints.RegisterSessionRoutes(r)
		})
	})

	return r
}

// Start starts the HTTP server
func (s *Server) Start() {
	port := s.config.Server.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: s.SetupRoutes(),
	}

	// Graceful shutdown
	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.assembler != nil {
		s.assembler.Close()
	}
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exited")
}

// CheckOrigin validates the origin of WebSocket connections to prevent CSRF attacks
func CheckOrigin(r *http.Request, allowedOriginsStr string) bool {
	origin := r.Header.Get("Origin")

	// If no allowed origins are configured, deny all requests for security
	if allowedOriginsStr == "" {
		slog.Warn("WebSocket connection rejected: no allowed origins configured", "origin", origin)
		return false
	}

	// Parse allowed origins (comma-separated list)
	allowedOrigins := strings.Split(allowedOriginsStr, ",")

	// Trim whitespace from origins
	for i := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(allowedOrigins[i])
	}

	// Check if origin is in allowed list
	for _, allowed := range allowedOrigins {
		if allowed == origin {
			slog.Info("WebSocket connection accepted", "origin", origin)
			return true
		}
	}

	slog.Warn("WebSocket connection rejected: origin not allowed", "origin", origin, "allowed_origins", allowedOriginsStr)
	return false
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	mongoStatus := "not configured"
	dbStatus := "not configured"

	if s.mongoClient != nil {
		if err := s.mongoClient.Ping(r.Context(), nil); err != nil {
			mongoStatus = "down"
			status = "degraded"
		} else {
			mongoStatus = "up"
		}
	}

	if s.gormDB != nil {
		if sqlDB, err := s.gormDB.DB(); err == nil {
			if err := sqlDB.Ping(); err != nil {
				dbStatus = "down"
				status = "degraded"
			} else {
				dbStatus = "up"
			}
		} else {
			dbStatus = "down"
			status = "degraded"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"` + status + `","mongo":"` + mongoStatus + `","database":"` + dbStatus + `"}`))

	slog.Info("Health check", "status", status, "mongo", mongoStatus, "database", dbStatus)
}

func (s *Server) apiV1Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message":"API v1","version":"1.0.0"}`))
}

func (s *Server) websocketHandlerFunc(w http.ResponseWriter, r *http.Request) {
	// The live answer channel is bound to an existing session
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Error(w, "Session ID is required", http.StatusBadRequest)
		return
	}

	session, err := s.sessionRepo.Get(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "Failed to load session", http.StatusInternalServerError)
		return
	}
	if session == nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}

	slog.Info("WebSocket connection established", "session_id", sessionID)

	// Register client with hub
	client := s.wsHub.RegisterClient(conn, sessionID)
	client.MessageHandler = func(c *ws.Client, messageBytes []byte) {
		s.websocketHandler.HandleWebSocketMessage(c, messageBytes)
	}

	// Start goroutines for reading and writing
	go client.ReadPump()
	go client.WritePump()
}
