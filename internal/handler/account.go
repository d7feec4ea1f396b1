package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"regexp"
	"strings"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Register handles POST /api/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	log.Printf("[POST /api/register] Request received from %s", r.RemoteAddr)

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[POST /api/register] ❌ Bad Request: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !emailPattern.MatchString(req.Email) {
		writeError(w, http.StatusBadRequest, "Invalid email format")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Name must not be empty")
		return
	}
	if len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	exists, err := h.Store.UserExists(req.Email)
	if err != nil {
		log.Printf("[POST /api/register] ❌ Database error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if exists {
		writeError(w, http.StatusBadRequest, "Email is already in use")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[POST /api/register] ❌ Hashing error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if err := h.Store.CreateUser(req.Email, req.Name, string(hash)); err != nil {
		log.Printf("[POST /api/register] ❌ Database error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	log.Printf("[POST /api/register] ✅ Registered user: %s", req.Email)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Registration successful"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/login. The response bundles the profile with the
// user's friends and conversation summaries so the client can render its
// chat list from a single call.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	log.Printf("[POST /api/login] Request received from %s", r.RemoteAddr)

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[POST /api/login] ❌ Bad Request: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, hash, err := h.Store.GetUserCredentials(req.Email)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	if err != nil {
		log.Printf("[POST /api/login] ❌ Database error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	friends, err := h.Store.ListFriends(user.Email)
	if err != nil {
		log.Printf("[POST /api/login] ❌ Database error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	conversations, err := h.Store.ListConversations(user.Email)
	if err != nil {
		log.Printf("[POST /api/login] ❌ Database error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	log.Printf("[POST /api/login] ✅ Login: %s (%d friends, %d conversations)", user.Email, len(friends), len(conversations))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"userId":        user.ID,
		"email":         user.Email,
		"name":          user.Name,
		"friends":       friends,
		"conversations": conversations,
	})
}

// SearchUsers handles GET /api/search/{email}
func (h *Handler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	fragment := mux.Vars(r)["email"]
	log.Printf("[GET /api/search/%s] Request received from %s", fragment, r.RemoteAddr)

	users, err := h.Store.SearchUsers(fragment)
	if err != nil {
		log.Printf("[GET /api/search/%s] ❌ Database error: %v", fragment, err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	log.Printf("[GET /api/search/%s] ✅ Returned %d users", fragment, len(users))
	writeJSON(w, http.StatusOK, users)
}
