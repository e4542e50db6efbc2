package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"beamer-quiz/internal/config"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Server struct {
	db     *gorm.DB
	cfg    config.Config
	hub    *roomHub
	logger *slog.Logger
	token  string

	bindingsMu sync.Mutex
	bindings   map[string]*client // player id -> connection

	debounceMu     sync.Mutex
	debounceTimers map[string]*time.Timer
}

func New(conn *gorm.DB, cfg config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	token := cfg.AdminToken
	if token == "" {
		token = uuid.NewString()
	}
	return &Server{
		db:             conn,
		cfg:            cfg,
		hub:            newRoomHub(),
		logger:         logger,
		token:          token,
		bindings:       make(map[string]*client),
		debounceTimers: make(map[string]*time.Timer),
	}
}

// Token returns the admin URL token issued at server start.
func (s *Server) Token() string {
	return s.token
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWebsocket)
	mux.HandleFunc("GET /api/join-qr", s.handleJoinQR)
	mux.HandleFunc("GET /api/images", s.handleListImages)
	mux.HandleFunc("POST /api/images", s.handleCreateImage)
	mux.HandleFunc("PATCH /api/images/{id}", s.handleUpdateImage)
	mux.HandleFunc("DELETE /api/images/{id}", s.handleDeleteImage)
	mux.HandleFunc("GET /api/images/{id}/answers", s.handleImageAnswers)
	mux.HandleFunc("GET /api/games/current/images", s.handleListGameImages)
	mux.HandleFunc("POST /api/games/current/images", s.handleAssignGameImage)
	mux.HandleFunc("GET /api/wordlists", s.handleListWordLists)
	mux.HandleFunc("POST /api/wordlists", s.handleCreateWordList)
	mux.HandleFunc("DELETE /api/wordlists/{id}", s.handleDeleteWordList)
	return mux
}

// bindPlayer rebinds a player's connection reference. An older connection
// for the same player is superseded, not closed.
func (s *Server) bindPlayer(playerID string, c *client) {
	s.bindingsMu.Lock()
	defer s.bindingsMu.Unlock()
	s.bindings[playerID] = c
}

func (s *Server) unbindPlayer(playerID string, c *client) {
	s.bindingsMu.Lock()
	defer s.bindingsMu.Unlock()
	if current, ok := s.bindings[playerID]; ok && current == c {
		delete(s.bindings, playerID)
	}
}

func (s *Server) boundClient(playerID string) *client {
	s.bindingsMu.Lock()
	defer s.bindingsMu.Unlock()
	return s.bindings[playerID]
}

// debounce coalesces bursts of presence changes so room membership can
// settle after a disconnect before the recount goes out.
func (s *Server) debounce(key string, wait time.Duration, fn func()) {
	s.debounceMu.Lock()
	defer s.debounceMu.Unlock()
	if existing, ok := s.debounceTimers[key]; ok {
		existing.Stop()
	}
	s.debounceTimers[key] = time.AfterFunc(wait, fn)
}
