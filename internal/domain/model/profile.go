package model

import (
	"time"

	"github.com/ivanmatek/ember/internal/domain/enums"
)

type Profile struct {
	ID          string          `json:"id"`
	DisplayName string          `json:"display_name"`
	Vibe        enums.Vibe      `json:"vibe"`
	Interests   []string        `json:"interests"`
	CommStyle   enums.CommStyle `json:"communication_style"`
	Matched     bool            `json:"matched"`
	CreatedAt   time.Time       `json:"created_at"`
}
