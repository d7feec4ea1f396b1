// Package store owns all SQL access. Message text columns are opaque here:
// the store reads and writes ciphertext as-is, decryption happens above it.
package store

import (
	"database/sql"
	"fmt"

	"securechat/internal/model"
)

// Store wraps the database handle
type Store struct {
	DB *sql.DB
}

// New creates a Store with the given database handle
func New(db *sql.DB) *Store {
	return &Store{DB: db}
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// AppendMessage durably writes one message row and returns its id.
// The insert is a single statement: it lands fully or not at all.
func (s *Store) AppendMessage(conversationID, cipherText, sender, sentAt, image, cipherHidden string) (string, error) {
	result, err := s.DB.Exec(
		"INSERT INTO messages (conversation_id, text, sender, time, image, hidden_text) VALUES (?, ?, ?, ?, ?, ?)",
		conversationID, nullable(cipherText), sender, sentAt, nullable(image), nullable(cipherHidden),
	)
	if err != nil {
		return "", fmt.Errorf("failed to append message: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("failed to retrieve message id: %w", err)
	}

	return fmt.Sprintf("%d", lastInsertID), nil
}

// UpdateConversationSummary overwrites the conversation's last-message
// fields. displayText is plaintext by contract.
func (s *Store) UpdateConversationSummary(conversationID, displayText, sentAt string) error {
	_, err := s.DB.Exec(
		"UPDATE conversations SET last_message = ?, last_message_time = ? WHERE id = ?",
		displayText, sentAt, conversationID,
	)
	if err != nil {
		return fmt.Errorf("failed to update conversation summary: %w", err)
	}
	return nil
}

// ListMessages returns a conversation's messages in append order. Text and
// HiddenText come back still encrypted.
func (s *Store) ListMessages(conversationID string) ([]model.Message, error) {
	rows, err := s.DB.Query(
		"SELECT id, conversation_id, text, sender, time, image, hidden_text FROM messages WHERE conversation_id = ? ORDER BY id",
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var msgList []model.Message
	for rows.Next() {
		var msg model.Message
		var text, image, hidden sql.NullString
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &text, &msg.Sender, &msg.Time, &image, &hidden); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		msg.Text = text.String
		msg.Image = image.String
		msg.HiddenText = hidden.String
		msgList = append(msgList, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate message rows: %w", err)
	}

	if msgList == nil {
		msgList = []model.Message{}
	}
	return msgList, nil
}
