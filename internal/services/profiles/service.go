package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ivanmatek/ember/internal/domain/enums"
	"github.com/ivanmatek/ember/internal/domain/model"
	"github.com/ivanmatek/ember/internal/pkg/validate"
	pgrepo "github.com/ivanmatek/ember/internal/repo/postgres"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("profile not found")
)

const (
	minInterests = 3
	maxInterests = 5
)

type ProfileStore interface {
	Create(ctx context.Context, displayName string, vibe enums.Vibe, interests []string, style enums.CommStyle) (model.Profile, error)
	Get(ctx context.Context, id string) (model.Profile, error)
}

type Service struct {
	store ProfileStore
}

// CreateInput is the raw intake form. Enum fields arrive as strings and are
// parsed here so transport stays dumb.
type CreateInput struct {
	DisplayName string
	Vibe        string
	Interests   []string
	CommStyle   string
}

func NewService(store ProfileStore) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (model.Profile, error) {
	if s.store == nil {
		return model.Profile{}, fmt.Errorf("profile store is nil")
	}

	if !validate.Required(in.DisplayName) {
		return model.Profile{}, fmt.Errorf("display name is required: %w", ErrValidation)
	}

	vibe, ok := enums.ParseVibe(in.Vibe)
	if !ok {
		return model.Profile{}, fmt.Errorf("vibe %q is not allowed: %w", in.Vibe, ErrValidation)
	}
	style, ok := enums.ParseCommStyle(in.CommStyle)
	if !ok {
		return model.Profile{}, fmt.Errorf("communication style %q is not allowed: %w", in.CommStyle, ErrValidation)
	}

	interests, err := normalizeInterests(in.Interests)
	if err != nil {
		return model.Profile{}, err
	}

	profile, err := s.store.Create(ctx, strings.TrimSpace(in.DisplayName), vibe, interests, style)
	if err != nil {
		return model.Profile{}, fmt.Errorf("save profile: %w", err)
	}

	return profile, nil
}

func (s *Service) Get(ctx context.Context, id string) (model.Profile, error) {
	if id == "" {
		return model.Profile{}, fmt.Errorf("profile id is required: %w", ErrValidation)
	}
	if s.store == nil {
		return model.Profile{}, fmt.Errorf("profile store is nil")
	}

	profile, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return model.Profile{}, ErrNotFound
		}
		return model.Profile{}, fmt.Errorf("load profile: %w", err)
	}

	return profile, nil
}

// normalizeInterests trims and de-duplicates while preserving order. Casing
// is kept as entered: interests are free-form labels and overlap scoring is
// intentionally case-sensitive.
func normalizeInterests(values []string) ([]string, error) {
	result := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return nil, fmt.Errorf("empty interest: %w", ErrValidation)
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}

	if len(result) < minInterests || len(result) > maxInterests {
		return nil, fmt.Errorf("between %d and %d interests are required: %w", minInterests, maxInterests, ErrValidation)
	}

	return result, nil
}
