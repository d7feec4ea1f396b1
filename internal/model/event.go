package model

// WebSocket event types
const (
	EventJoinChat       = "joinChat"
	EventLeaveChat      = "leaveChat"
	EventSendMessage    = "sendMessage"
	EventReceiveMessage = "receiveMessage"
	EventFriendRequest  = "friendRequest"
	EventFriendAccepted = "friendAccepted"
)

// Event is the envelope for every WebSocket frame, both directions. Only
// the fields relevant to Type are set.
type Event struct {
	Type    string   `json:"type"`
	ChatID  string   `json:"chatId,omitempty"`
	Message *Message `json:"message,omitempty"`

	// friendRequest / friendAccepted notifications
	SenderEmail   string `json:"senderEmail,omitempty"`
	ReceiverEmail string `json:"receiverEmail,omitempty"`
	UserEmail     string `json:"userEmail,omitempty"`
	FriendEmail   string `json:"friendEmail,omitempty"`
}
