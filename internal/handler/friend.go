package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"securechat/internal/model"
)

// notifyAll pushes an event to every connected session, joined to a room or
// not. Friend workflow notifications are global: the receiver has no room
// to be in yet.
func (h *Handler) notifyAll(event model.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("[WebSocket] ❌ Failed to marshal %s event: %v", event.Type, err)
		return
	}
	for _, s := range h.Registry.Sessions() {
		if err := s.Send(payload); err != nil {
			log.Printf("[WebSocket] Delivery of %s to session %s failed: %v", event.Type, s.ID(), err)
		}
	}
}

type friendRequestBody struct {
	SenderEmail   string `json:"senderEmail"`
	ReceiverEmail string `json:"receiverEmail"`
}

// SendFriendRequest handles POST /api/friend-request
func (h *Handler) SendFriendRequest(w http.ResponseWriter, r *http.Request) {
	log.Printf("[POST /api/friend-request] Request received from %s", r.RemoteAddr)

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req friendRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[POST /api/friend-request] ❌ Bad Request: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	pending, err := h.Store.HasPendingRequest(req.SenderEmail, req.ReceiverEmail)
	if err != nil {
		log.Printf("[POST /api/friend-request] ❌ Database error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if pending {
		writeError(w, http.StatusBadRequest, "Friend request already sent")
		return
	}

	friends, err := h.Store.AreFriends(req.SenderEmail, req.ReceiverEmail)
	if err != nil {
		log.Printf("[POST /api/friend-request] ❌ Database error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if friends {
		writeError(w, http.StatusBadRequest, "Already friends")
		return
	}

	if err := h.Store.CreateFriendRequest(req.SenderEmail, req.ReceiverEmail); err != nil {
		log.Printf("[POST /api/friend-request] ❌ Database error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.notifyAll(model.Event{
		Type:          model.EventFriendRequest,
		SenderEmail:   req.SenderEmail,
		ReceiverEmail: req.ReceiverEmail,
	})

	log.Printf("[POST /api/friend-request] ✅ Request: %s -> %s", req.SenderEmail, req.ReceiverEmail)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Friend request sent"})
}

// ListFriendRequests handles GET /api/friend-requests/{email}
func (h *Handler) ListFriendRequests(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	log.Printf("[GET /api/friend-requests/%s] Request received from %s", email, r.RemoteAddr)

	requests, err := h.Store.ListFriendRequests(email)
	if err != nil {
		log.Printf("[GET /api/friend-requests/%s] ❌ Database error: %v", email, err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	log.Printf("[GET /api/friend-requests/%s] ✅ Returned %d requests", email, len(requests))
	writeJSON(w, http.StatusOK, requests)
}

type acceptFriendBody struct {
	RequestID   string `json:"requestId"`
	UserEmail   string `json:"userEmail"`
	FriendEmail string `json:"friendEmail"`
}

// AcceptFriend handles POST /api/accept-friend. Accepting creates the
// pair's conversation; its id goes out in the friendAccepted event so both
// clients can join the new room right away.
func (h *Handler) AcceptFriend(w http.ResponseWriter, r *http.Request) {
	log.Printf("[POST /api/accept-friend] Request received from %s", r.RemoteAddr)

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req acceptFriendBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[POST /api/accept-friend] ❌ Bad Request: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	acceptedAt := time.Now().Format("15:04")
	conversationID, err := h.Store.AcceptFriendRequest(req.RequestID, req.UserEmail, req.FriendEmail, acceptedAt)
	if err != nil {
		log.Printf("[POST /api/accept-friend] ❌ Database error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.notifyAll(model.Event{
		Type:        model.EventFriendAccepted,
		UserEmail:   req.UserEmail,
		FriendEmail: req.FriendEmail,
		ChatID:      conversationID,
	})

	log.Printf("[POST /api/accept-friend] ✅ Accepted: %s + %s, conversation %s", req.UserEmail, req.FriendEmail, conversationID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Friend request accepted"})
}
