package dto

import (
	"time"

	"github.com/ivanmatek/ember/internal/domain/model"
)

type SendMessageRequest struct {
	SenderID string `json:"sender_id"`
	Content  string `json:"content"`
}

type MessageResponse struct {
	ID        string    `json:"id"`
	MatchID   string    `json:"match_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func MessageFromModel(m model.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		MatchID:   m.MatchID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

type MessagesResponse struct {
	Items []MessageResponse `json:"items"`
}
