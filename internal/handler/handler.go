package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"securechat/internal/chat"
	"securechat/internal/config"
	"securechat/internal/room"
	"securechat/internal/store"
)

// Handler holds application dependencies
type Handler struct {
	Store    *store.Store
	Registry *room.Registry
	Pipeline *chat.Pipeline
	Config   config.Config
}

// New creates a new Handler with the given dependencies
func New(s *store.Store, registry *room.Registry, pipeline *chat.Pipeline, cfg config.Config) *Handler {
	return &Handler{
		Store:    s,
		Registry: registry,
		Pipeline: pipeline,
		Config:   cfg,
	}
}

// SetupRouter configures and returns the HTTP router
func (h *Handler) SetupRouter() *mux.Router {
	r := mux.NewRouter()

	// REST API
	r.HandleFunc("/api/register", h.Register).Methods("POST")
	r.HandleFunc("/api/login", h.Login).Methods("POST")
	r.HandleFunc("/api/search/{email}", h.SearchUsers).Methods("GET")
	r.HandleFunc("/api/friend-request", h.SendFriendRequest).Methods("POST")
	r.HandleFunc("/api/friend-requests/{email}", h.ListFriendRequests).Methods("GET")
	r.HandleFunc("/api/accept-friend", h.AcceptFriend).Methods("POST")
	r.HandleFunc("/api/messages/{chatId}", h.GetMessages).Methods("GET")

	// WebSocket
	r.HandleFunc("/ws", h.HandleWebSocket).Methods("GET")

	return r
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
