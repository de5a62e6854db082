package dto

import (
	"time"

	"github.com/ivanmatek/ember/internal/domain/model"
)

type AttemptMatchRequest struct {
	UserID string `json:"user_id"`
}

type MatchResponse struct {
	ID        string    `json:"id"`
	UserAID   string    `json:"user_a_id"`
	UserBID   string    `json:"user_b_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Active    bool      `json:"active"`
}

func MatchFromModel(m model.Match) MatchResponse {
	return MatchResponse{
		ID:        m.ID,
		UserAID:   m.UserAID,
		UserBID:   m.UserBID,
		CreatedAt: m.CreatedAt,
		ExpiresAt: m.ExpiresAt,
		Active:    m.Active,
	}
}

type SweepResponse struct {
	Released int `json:"released"`
}
