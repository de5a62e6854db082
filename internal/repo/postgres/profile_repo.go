package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivanmatek/ember/internal/domain/enums"
	"github.com/ivanmatek/ember/internal/domain/model"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) Create(ctx context.Context, displayName string, vibe enums.Vibe, interests []string, style enums.CommStyle) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}

	profile := model.Profile{
		ID:          uuid.NewString(),
		DisplayName: displayName,
		Vibe:        vibe,
		Interests:   interests,
		CommStyle:   style,
		Matched:     false,
	}

	err := r.pool.QueryRow(ctx, `
INSERT INTO profiles (
	id,
	display_name,
	vibe,
	interests,
	communication_style,
	matched,
	created_at
) VALUES ($1, $2, $3, $4, $5, FALSE, NOW())
RETURNING created_at
`, profile.ID, profile.DisplayName, string(profile.Vibe), profile.Interests, string(profile.CommStyle)).Scan(&profile.CreatedAt)
	if err != nil {
		return model.Profile{}, fmt.Errorf("create profile: %w", err)
	}

	return profile, nil
}

func (r *ProfileRepo) Get(ctx context.Context, id string) (model.Profile, error) {
	if id == "" {
		return model.Profile{}, fmt.Errorf("profile id is required")
	}
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}

	var p model.Profile
	err := r.pool.QueryRow(ctx, `
SELECT id, display_name, vibe, interests, communication_style, matched, created_at
FROM profiles
WHERE id = $1
`, id).Scan(&p.ID, &p.DisplayName, &p.Vibe, &p.Interests, &p.CommStyle, &p.Matched, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	return p, nil
}

// ListUnmatched returns every profile still in the pool, excluding the
// requesting user. Iteration order follows insertion order; callers that
// rank candidates must not rely on it being stable.
func (r *ProfileRepo) ListUnmatched(ctx context.Context, excludeID string) ([]model.Profile, error) {
	if excludeID == "" {
		return nil, fmt.Errorf("exclude id is required")
	}
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, display_name, vibe, interests, communication_style, matched, created_at
FROM profiles
WHERE matched = FALSE AND id <> $1
ORDER BY created_at, id
`, excludeID)
	if err != nil {
		return nil, fmt.Errorf("list unmatched profiles: %w", err)
	}
	defer rows.Close()

	items := make([]model.Profile, 0)
	for rows.Next() {
		var p model.Profile
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.Vibe, &p.Interests, &p.CommStyle, &p.Matched, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan unmatched profile: %w", err)
		}
		items = append(items, p)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate unmatched profiles: %w", rows.Err())
	}

	return items, nil
}

func (r *ProfileRepo) SetMatched(ctx context.Context, id string, matched bool) error {
	if id == "" {
		return fmt.Errorf("profile id is required")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	result, err := r.pool.Exec(ctx, `
UPDATE profiles
SET matched = $2
WHERE id = $1
`, id, matched)
	if err != nil {
		return fmt.Errorf("set profile matched flag: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrProfileNotFound
	}

	return nil
}
