package model

import "time"

type Message struct {
	ID        string    `json:"id"`
	MatchID   string    `json:"match_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
