package dto

import (
	"time"

	"github.com/ivanmatek/ember/internal/domain/model"
)

type CreateProfileRequest struct {
	DisplayName string   `json:"display_name"`
	Vibe        string   `json:"vibe"`
	Interests   []string `json:"interests"`
	CommStyle   string   `json:"communication_style"`
}

type ProfileResponse struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Vibe        string    `json:"vibe"`
	Interests   []string  `json:"interests"`
	CommStyle   string    `json:"communication_style"`
	Matched     bool      `json:"matched"`
	CreatedAt   time.Time `json:"created_at"`
}

func ProfileFromModel(p model.Profile) ProfileResponse {
	return ProfileResponse{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Vibe:        string(p.Vibe),
		Interests:   p.Interests,
		CommStyle:   string(p.CommStyle),
		Matched:     p.Matched,
		CreatedAt:   p.CreatedAt,
	}
}
