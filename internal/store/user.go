package store

import (
	"database/sql"
	"fmt"
	"strings"

	"securechat/internal/model"
)

// StarterMessage seeds the summary of a freshly created conversation
const StarterMessage = "Say hello!"

// CreateUser inserts a new account. password is the bcrypt hash, never the
// raw credential.
func (s *Store) CreateUser(email, name, passwordHash string) error {
	_, err := s.DB.Exec(
		"INSERT INTO users (email, name, password_hash) VALUES (?, ?, ?)",
		email, name, passwordHash,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UserExists reports whether an account with the email already exists
func (s *Store) UserExists(email string) (bool, error) {
	var exists bool
	err := s.DB.QueryRow("SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)", email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

// GetUserCredentials returns the profile and stored password hash for login
func (s *Store) GetUserCredentials(email string) (model.User, string, error) {
	var user model.User
	var hash string
	err := s.DB.QueryRow(
		"SELECT id, email, name, password_hash FROM users WHERE email = ?",
		email,
	).Scan(&user.ID, &user.Email, &user.Name, &hash)
	if err == sql.ErrNoRows {
		return model.User{}, "", err
	}
	if err != nil {
		return model.User{}, "", fmt.Errorf("failed to load user: %w", err)
	}
	return user, hash, nil
}

// SearchUsers matches accounts whose email contains the fragment
func (s *Store) SearchUsers(fragment string) ([]model.User, error) {
	rows, err := s.DB.Query(
		"SELECT email, name FROM users WHERE email LIKE ?",
		"%"+fragment+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.Email, &u.Name); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}

	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

// ListFriends returns the emails of the user's friends
func (s *Store) ListFriends(email string) ([]string, error) {
	rows, err := s.DB.Query("SELECT friend_email FROM friends WHERE user_email = ?", email)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	var friends []string
	for rows.Next() {
		var friend string
		if err := rows.Scan(&friend); err != nil {
			return nil, fmt.Errorf("failed to scan friend row: %w", err)
		}
		friends = append(friends, friend)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate friend rows: %w", err)
	}

	if friends == nil {
		friends = []string{}
	}
	return friends, nil
}

// ListConversations returns the summaries of every conversation the user
// participates in
func (s *Store) ListConversations(email string) ([]model.Conversation, error) {
	rows, err := s.DB.Query(
		`SELECT c.id, c.last_message, c.last_message_time, GROUP_CONCAT(cp.username) AS participants
		 FROM conversations c
		 JOIN conversation_participants cp ON c.id = cp.conversation_id
		 WHERE c.id IN (SELECT conversation_id FROM conversation_participants WHERE username = ?)
		 GROUP BY c.id`,
		email,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var convList []model.Conversation
	for rows.Next() {
		var conv model.Conversation
		var participants string
		if err := rows.Scan(&conv.ID, &conv.LastMessage, &conv.LastMessageTime, &participants); err != nil {
			return nil, fmt.Errorf("failed to scan conversation row: %w", err)
		}
		conv.Participants = strings.Split(participants, ",")
		convList = append(convList, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversation rows: %w", err)
	}

	if convList == nil {
		convList = []model.Conversation{}
	}
	return convList, nil
}

// HasPendingRequest reports whether sender already has a pending request to
// receiver
func (s *Store) HasPendingRequest(sender, receiver string) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM friend_requests WHERE sender_email = ? AND receiver_email = ? AND status = 'pending')",
		sender, receiver,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check pending request: %w", err)
	}
	return exists, nil
}

// AreFriends reports whether the two users are already friends
func (s *Store) AreFriends(userEmail, friendEmail string) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM friends WHERE user_email = ? AND friend_email = ?)",
		userEmail, friendEmail,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}
	return exists, nil
}

// CreateFriendRequest inserts a pending request
func (s *Store) CreateFriendRequest(sender, receiver string) error {
	_, err := s.DB.Exec(
		"INSERT INTO friend_requests (sender_email, receiver_email, status) VALUES (?, ?, 'pending')",
		sender, receiver,
	)
	if err != nil {
		return fmt.Errorf("failed to create friend request: %w", err)
	}
	return nil
}

// ListFriendRequests returns the pending requests addressed to the user
func (s *Store) ListFriendRequests(email string) ([]model.FriendRequest, error) {
	rows, err := s.DB.Query(
		`SELECT fr.id, fr.sender_email, u.name AS sender_name
		 FROM friend_requests fr
		 JOIN users u ON fr.sender_email = u.email
		 WHERE fr.receiver_email = ? AND fr.status = 'pending'`,
		email,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list friend requests: %w", err)
	}
	defer rows.Close()

	var requests []model.FriendRequest
	for rows.Next() {
		var req model.FriendRequest
		if err := rows.Scan(&req.ID, &req.Sender, &req.SenderName); err != nil {
			return nil, fmt.Errorf("failed to scan friend request row: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate friend request rows: %w", err)
	}

	if requests == nil {
		requests = []model.FriendRequest{}
	}
	return requests, nil
}

// AcceptFriendRequest marks the request accepted, records the friendship in
// both directions, and creates the pair's conversation. Returns the new
// conversation id.
func (s *Store) AcceptFriendRequest(requestID, userEmail, friendEmail, acceptedAt string) (string, error) {
	tx, err := s.DB.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE friend_requests SET status = 'accepted' WHERE id = ?", requestID); err != nil {
		return "", fmt.Errorf("failed to accept friend request: %w", err)
	}

	if _, err := tx.Exec(
		"INSERT INTO friends (user_email, friend_email) VALUES (?, ?), (?, ?)",
		userEmail, friendEmail, friendEmail, userEmail,
	); err != nil {
		return "", fmt.Errorf("failed to record friendship: %w", err)
	}

	result, err := tx.Exec(
		"INSERT INTO conversations (last_message, last_message_time) VALUES (?, ?)",
		StarterMessage, acceptedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create conversation: %w", err)
	}
	conversationID, err := result.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("failed to retrieve conversation id: %w", err)
	}

	if _, err := tx.Exec(
		"INSERT INTO conversation_participants (conversation_id, username) VALUES (?, ?), (?, ?)",
		conversationID, userEmail, conversationID, friendEmail,
	); err != nil {
		return "", fmt.Errorf("failed to add participants: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit friend acceptance: %w", err)
	}

	return fmt.Sprintf("%d", conversationID), nil
}
