package model

import "time"

// Match is a time-boxed pairing of two profiles. UserAID/UserBID are an
// unordered pair; callers must treat both orientations the same.
type Match struct {
	ID        string    `json:"id"`
	UserAID   string    `json:"user_a_id"`
	UserBID   string    `json:"user_b_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Active    bool      `json:"active"`
}

// PartnerOf returns the side of the pair that is not userID, or "" when
// userID is not a participant.
func (m Match) PartnerOf(userID string) string {
	switch userID {
	case m.UserAID:
		return m.UserBID
	case m.UserBID:
		return m.UserAID
	default:
		return ""
	}
}

func (m Match) HasParticipant(userID string) bool {
	return userID != "" && (m.UserAID == userID || m.UserBID == userID)
}

func (m Match) ExpiredAt(now time.Time) bool {
	return !m.ExpiresAt.After(now)
}
