package core

import (
	"errors"
	"time"
)

// ErrNotFound is returned by storage lookups when a chat id has no row.
var ErrNotFound = errors.New("chat not found")

// MessageType tags what kind of content a chat message carries.
type MessageType string

const (
	TypeText  MessageType = "text"
	TypeMedia MessageType = "media"
	TypeAudio MessageType = "audio"
)

// ChatMessage is the unified structure produced by the parser, written to
// SQLite and served over the HTTP API.
type ChatMessage struct {
	ID             string      `json:"id"`
	Ts             time.Time   `json:"timestamp"`
	Sender         string      `json:"sender"`
	Content        string      `json:"content"`
	Type           MessageType `json:"type"`
	IsDeleted      bool        `json:"isDeleted,omitempty"`
	IsForwarded    bool        `json:"isForwarded,omitempty"`
	EmojiCount     int         `json:"emojiCount,omitempty"`
	SentimentScore float64     `json:"sentimentScore"`
}

// DateRange spans the first and last message timestamps of a parsed chat.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ParsedChat is the full result of parsing one exported conversation.
// Participants are unique and sorted; Range is nil when Messages is empty.
type ParsedChat struct {
	Messages     []ChatMessage `json:"messages"`
	Participants []string      `json:"participants"`
	Range        *DateRange    `json:"dateRange,omitempty"`
}

// Chat is a stored conversation import.
type Chat struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Participants []string   `json:"participants"`
	MessageCount int        `json:"message_count"`
	Range        *DateRange `json:"dateRange,omitempty"`
	ImportedAt   time.Time  `json:"imported_at"`
}
