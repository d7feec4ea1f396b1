// Package chat runs inbound messages through the send pipeline: encrypt,
// persist, summarize, decrypt for broadcast, fan out to the room.
package chat

import (
	"encoding/json"
	"fmt"
	"log"

	"securechat/internal/cipher"
	"securechat/internal/model"
	"securechat/internal/room"
)

// ImagePlaceholder is the conversation summary text for image-only messages
const ImagePlaceholder = "Sent an image"

// MessageStore is the persistence the pipeline needs
type MessageStore interface {
	AppendMessage(conversationID, cipherText, sender, sentAt, image, cipherHidden string) (string, error)
	UpdateConversationSummary(conversationID, displayText, sentAt string) error
}

// Roster resolves a conversation to its currently joined sessions
type Roster interface {
	MembersOf(conversationID string) []room.Session
}

// Pipeline orchestrates one message send end to end
type Pipeline struct {
	store  MessageStore
	rooms  Roster
	cipher *cipher.Cipher
}

// New creates a Pipeline with its dependencies
func New(store MessageStore, rooms Roster, c *cipher.Cipher) *Pipeline {
	return &Pipeline{store: store, rooms: rooms, cipher: c}
}

// Send encrypts and durably stores the message, then broadcasts the
// plaintext payload to every session in the conversation's room. If the
// store write fails nothing is broadcast: clients never see a message the
// store does not hold. The summary update is best-effort once the message
// row is durable.
func (p *Pipeline) Send(msg model.Message) error {
	cipherText, err := p.cipher.Encrypt(msg.Text)
	if err != nil {
		return fmt.Errorf("encrypt text: %w", err)
	}
	cipherHidden, err := p.cipher.Encrypt(msg.HiddenText)
	if err != nil {
		return fmt.Errorf("encrypt hidden text: %w", err)
	}

	id, err := p.store.AppendMessage(msg.ConversationID, cipherText, msg.Sender, msg.Time, msg.Image, cipherHidden)
	if err != nil {
		return fmt.Errorf("persist message: %w", err)
	}
	msg.ID = id

	display := msg.Text
	if display == "" && msg.Image != "" {
		display = ImagePlaceholder
	}
	if err := p.store.UpdateConversationSummary(msg.ConversationID, display, msg.Time); err != nil {
		// メッセージ本体は保存済みなので、サマリー更新失敗は配信を止めない
		log.Printf("[Pipeline] Summary update failed for conversation %s: %v", msg.ConversationID, err)
	}

	// Broadcast what was actually stored: decrypting the fresh ciphertext
	// instead of echoing the inbound plaintext makes a key or codec
	// regression show up as garbled broadcasts instead of silently
	// diverging stored data.
	msg.Text, err = p.cipher.Decrypt(cipherText)
	if err != nil {
		log.Printf("[Pipeline] Decrypt-for-broadcast failed for message %s: %v", msg.ID, err)
	}
	msg.HiddenText, err = p.cipher.Decrypt(cipherHidden)
	if err != nil {
		log.Printf("[Pipeline] Decrypt-for-broadcast failed for hidden text of message %s: %v", msg.ID, err)
	}

	payload, err := json.Marshal(model.Event{Type: model.EventReceiveMessage, Message: &msg})
	if err != nil {
		return fmt.Errorf("marshal broadcast payload: %w", err)
	}

	for _, member := range p.rooms.MembersOf(msg.ConversationID) {
		if err := member.Send(payload); err != nil {
			// 配信失敗はそのセッションだけの問題として扱う
			log.Printf("[Pipeline] Delivery to session %s failed: %v", member.ID(), err)
		}
	}

	return nil
}

// DecryptForRead converts a stored row into its client-facing form. A field
// that fails to decrypt comes back empty; the rest of the row is unaffected.
func (p *Pipeline) DecryptForRead(msg model.Message) model.Message {
	text, err := p.cipher.Decrypt(msg.Text)
	if err != nil {
		log.Printf("[Pipeline] Decrypt failed for message %s text: %v", msg.ID, err)
	}
	hidden, err := p.cipher.Decrypt(msg.HiddenText)
	if err != nil {
		log.Printf("[Pipeline] Decrypt failed for message %s hidden text: %v", msg.ID, err)
	}
	msg.Text = text
	msg.HiddenText = hidden
	return msg
}
