package candidates

import (
	"context"
	"errors"
	"testing"

	"github.com/ivanmatek/ember/internal/domain/enums"
	"github.com/ivanmatek/ember/internal/domain/model"
)

type fakeProfileStore struct {
	profiles map[string]model.Profile
	pool     []model.Profile
	listErr  error
}

func (f *fakeProfileStore) Get(_ context.Context, id string) (model.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return model.Profile{}, errors.New("profile not found")
	}
	return p, nil
}

func (f *fakeProfileStore) ListUnmatched(_ context.Context, excludeID string) ([]model.Profile, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.Profile, 0, len(f.pool))
	for _, p := range f.pool {
		if p.ID != excludeID && !p.Matched {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestSelectRanksByScoreDescending(t *testing.T) {
	self := model.Profile{
		ID:        "self",
		Interests: []string{"Music", "Travel", "Art"},
		Vibe:      enums.VibeDeep,
		CommStyle: enums.StyleThoughtful,
	}
	strong := model.Profile{
		ID:        "strong",
		Interests: []string{"Music", "Travel", "Cooking"},
		Vibe:      enums.VibeSupportive,
		CommStyle: enums.StyleCalm,
	}
	weak := model.Profile{
		ID:        "weak",
		Interests: []string{"Chess"},
		Vibe:      enums.VibeLighthearted,
		CommStyle: enums.StyleDirect,
	}

	store := &fakeProfileStore{
		profiles: map[string]model.Profile{"self": self},
		pool:     []model.Profile{weak, strong},
	}

	ranked, err := NewService(store).Select(context.Background(), "self")
	if err != nil {
		t.Fatalf("select candidates: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("unexpected candidate count: %d", len(ranked))
	}
	if ranked[0].Profile.ID != "strong" || ranked[0].Score != 9 {
		t.Fatalf("unexpected top candidate: %s score %d", ranked[0].Profile.ID, ranked[0].Score)
	}
	if ranked[1].Profile.ID != "weak" || ranked[1].Score != 0 {
		t.Fatalf("unexpected second candidate: %s score %d", ranked[1].Profile.ID, ranked[1].Score)
	}
}

func TestSelectKeepsStoreOrderOnTies(t *testing.T) {
	self := model.Profile{
		ID:        "self",
		Interests: []string{"Music"},
		Vibe:      enums.VibeCreative,
		CommStyle: enums.StyleEnergetic,
	}
	first := model.Profile{ID: "first", Interests: []string{"Chess"}, Vibe: enums.VibeDeep, CommStyle: enums.StyleCalm}
	second := model.Profile{ID: "second", Interests: []string{"Golf"}, Vibe: enums.VibeDeep, CommStyle: enums.StyleCalm}

	store := &fakeProfileStore{
		profiles: map[string]model.Profile{"self": self},
		pool:     []model.Profile{first, second},
	}

	ranked, err := NewService(store).Select(context.Background(), "self")
	if err != nil {
		t.Fatalf("select candidates: %v", err)
	}
	if ranked[0].Profile.ID != "first" || ranked[1].Profile.ID != "second" {
		t.Fatalf("tie order not preserved: %s, %s", ranked[0].Profile.ID, ranked[1].Profile.ID)
	}
}

func TestSelectEmptyPool(t *testing.T) {
	self := model.Profile{ID: "self", Vibe: enums.VibeDeep, CommStyle: enums.StyleCalm}
	store := &fakeProfileStore{
		profiles: map[string]model.Profile{"self": self},
	}

	ranked, err := NewService(store).Select(context.Background(), "self")
	if err != nil {
		t.Fatalf("select candidates: %v", err)
	}
	if len(ranked) != 0 {
		t.Fatalf("expected empty ranking, got %d candidates", len(ranked))
	}
}

func TestSelectValidation(t *testing.T) {
	svc := NewService(&fakeProfileStore{})
	if _, err := svc.Select(context.Background(), ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty user id, got %v", err)
	}
}
