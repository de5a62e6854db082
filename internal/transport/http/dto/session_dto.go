package dto

type SessionResponse struct {
	State   string           `json:"state"`
	Match   *MatchResponse   `json:"match,omitempty"`
	Partner *ProfileResponse `json:"partner,omitempty"`
}
