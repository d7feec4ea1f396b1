package handler

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"securechat/internal/model"
)

// GetMessages handles GET /api/messages/{chatId}. Rows leave the store
// encrypted and are decrypted here, at the boundary; a row that fails to
// decrypt yields empty text for that field only.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	chatID := mux.Vars(r)["chatId"]
	log.Printf("[GET /api/messages/%s] Request received from %s", chatID, r.RemoteAddr)

	stored, err := h.Store.ListMessages(chatID)
	if err != nil {
		log.Printf("[GET /api/messages/%s] ❌ Database error: %v", chatID, err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	msgList := make([]model.Message, 0, len(stored))
	for _, msg := range stored {
		msgList = append(msgList, h.Pipeline.DecryptForRead(msg))
	}

	log.Printf("[GET /api/messages/%s] ✅ Returned %d messages", chatID, len(msgList))
	writeJSON(w, http.StatusOK, msgList)
}
