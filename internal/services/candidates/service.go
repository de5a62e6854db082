package candidates

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ivanmatek/ember/internal/domain/model"
	"github.com/ivanmatek/ember/internal/domain/rules"
)

var ErrValidation = errors.New("validation error")

type ProfileStore interface {
	Get(ctx context.Context, id string) (model.Profile, error)
	ListUnmatched(ctx context.Context, excludeID string) ([]model.Profile, error)
}

type Candidate struct {
	Profile model.Profile
	Score   int
}

type Service struct {
	store ProfileStore
}

func NewService(store ProfileStore) *Service {
	return &Service{store: store}
}

// Select ranks every unmatched profile (excluding the user) by compatibility
// score, descending. Ties keep store order. The full pool is rescored on
// every call; the pool is assumed small.
func (s *Service) Select(ctx context.Context, userID string) ([]Candidate, error) {
	if userID == "" {
		return nil, ErrValidation
	}
	if s.store == nil {
		return nil, fmt.Errorf("profile store is nil")
	}

	self, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load requesting profile: %w", err)
	}

	return s.RankFor(ctx, self)
}

// RankFor is Select for callers that already hold the requesting profile.
func (s *Service) RankFor(ctx context.Context, self model.Profile) ([]Candidate, error) {
	if self.ID == "" {
		return nil, ErrValidation
	}
	if s.store == nil {
		return nil, fmt.Errorf("profile store is nil")
	}

	pool, err := s.store.ListUnmatched(ctx, self.ID)
	if err != nil {
		return nil, fmt.Errorf("list unmatched pool: %w", err)
	}

	ranked := make([]Candidate, 0, len(pool))
	for _, candidate := range pool {
		ranked = append(ranked, Candidate{
			Profile: candidate,
			Score:   rules.Score(self, candidate),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked, nil
}
