package model

// Message represents one chat message. Text and HiddenText hold whatever
// form the current boundary requires: ciphertext when read from the store,
// plaintext when handed to clients.
type Message struct {
	ID             string `json:"id,omitempty"`
	ConversationID string `json:"chatId"`
	Sender         string `json:"sender"`
	Text           string `json:"text,omitempty"`
	HiddenText     string `json:"hiddenText,omitempty"`
	Image          string `json:"image,omitempty"`
	Time           string `json:"time"`
}

// Conversation is the denormalized summary row shown in a user's chat list
type Conversation struct {
	ID              string   `json:"_id"`
	Participants    []string `json:"participants"`
	LastMessage     string   `json:"lastMessage"`
	LastMessageTime string   `json:"lastMessageTime"`
}

// User is the public profile returned by login and search
type User struct {
	ID    string `json:"userId,omitempty"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// FriendRequest is one pending friend request as listed for the receiver
type FriendRequest struct {
	ID         string `json:"id"`
	SenderName string `json:"sender_name"`
	Sender     string `json:"sender_email"`
}
