package model

import (
	"strings"
	"time"

	"telegram-chat-stats/internal/domain"
)

// Message is an immutable chat message. CreatedAt is assigned by the store on insert.
type Message struct {
	ID        int64
	UserID    int64
	ChatID    int64
	Text      string
	CreatedAt time.Time
}

func NewMessage(userID, chatID int64, text string) (*Message, error) {
	if userID == 0 || chatID == 0 {
		return nil, domain.ErrInvalidArgument
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Message{UserID: userID, ChatID: chatID, Text: text}, nil
}
