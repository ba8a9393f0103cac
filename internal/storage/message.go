package storage

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/zhengyanglee07/Let-s-Chat/pkg/protocol"
)

// Message is the persisted form of a chat message.
type Message struct {
	ID        uint      `gorm:"primaryKey"`
	Sender    string    `gorm:"size:255;not null"`
	Receiver  string    `gorm:"size:255;not null"`
	Text      string    `gorm:"not null"`
	ChatID    string    `gorm:"size:255;index;not null"`
	CreatedAt time.Time `gorm:"index"`
}

// MessageStore is the durable append-only history, queried by conversation
// key on page load. The relay appends fire-and-forget and never reads back.
type MessageStore struct {
	db *gorm.DB
}

// NewMessageStore migrates the message table and returns the store.
func NewMessageStore(db *gorm.DB) (*MessageStore, error) {
	if err := db.AutoMigrate(&Message{}); err != nil {
		return nil, fmt.Errorf("failed to migrate messages: %w", err)
	}
	return &MessageStore{db: db}, nil
}

// Append stores one message.
func (s *MessageStore) Append(ctx context.Context, msg protocol.ChatMessage) error {
	row := Message{
		Sender:    msg.Sender,
		Receiver:  msg.Receiver,
		Text:      msg.Text,
		ChatID:    msg.ChatID,
		CreatedAt: msg.CreatedAt,
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// ByChat returns the conversation's messages ascending by creation time.
func (s *MessageStore) ByChat(ctx context.Context, chatID string) ([]protocol.ChatMessage, error) {
	var rows []Message
	err := s.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}

	messages := make([]protocol.ChatMessage, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, protocol.ChatMessage{
			Sender:    row.Sender,
			Receiver:  row.Receiver,
			Text:      row.Text,
			ChatID:    row.ChatID,
			CreatedAt: row.CreatedAt,
		})
	}
	return messages, nil
}
