package model

import (
	"strings"

	"telegram-chat-stats/internal/domain"
)

// User is a chat participant identified by the platform-assigned numeric id.
// Handle and names are overwritten with the latest seen values on every message.
type User struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

func NewUser(id int64, username, firstName, lastName string) (*User, error) {
	if id == 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &User{
		ID:        id,
		Username:  NormalizeHandle(username),
		FirstName: firstName,
		LastName:  lastName,
	}, nil
}

// DisplayName renders "@handle", falling back to the full name and then to "Unknown".
func (u User) DisplayName() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full == "" {
		return "Unknown"
	}
	return full
}

// NormalizeHandle strips surrounding whitespace and a leading "@".
func NormalizeHandle(handle string) string {
	return strings.TrimPrefix(strings.TrimSpace(handle), "@")
}
