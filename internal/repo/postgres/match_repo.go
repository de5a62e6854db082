package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivanmatek/ember/internal/domain/model"
)

var (
	ErrMatchNotFound = errors.New("match not found")

	// ErrCandidateTaken reports that at least one side of the pair was no
	// longer unmatched when the pairing transaction ran.
	ErrCandidateTaken = errors.New("candidate already matched")
)

type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

// CreatePair flags both profiles matched and inserts the match row in one
// transaction. The conditional UPDATE doubles as a compare-and-swap: if any
// of the two rows already has matched=TRUE the transaction rolls back with
// ErrCandidateTaken, so a racing arbiter can never produce a second active
// match for the same profile.
func (r *MatchRepo) CreatePair(ctx context.Context, userA, userB string, expiresAt time.Time) (model.Match, error) {
	if userA == "" || userB == "" || userA == userB {
		return model.Match{}, fmt.Errorf("invalid match pair payload")
	}

	match := model.Match{
		ID:        uuid.NewString(),
		UserAID:   userA,
		UserBID:   userB,
		ExpiresAt: expiresAt,
		Active:    true,
	}

	err := WithTx(ctx, r.pool, func(txCtx context.Context, tx pgx.Tx) error {
		result, err := tx.Exec(txCtx, `
UPDATE profiles
SET matched = TRUE
WHERE id = ANY($1) AND matched = FALSE
`, []string{userA, userB})
		if err != nil {
			return fmt.Errorf("flag pair matched: %w", err)
		}
		if result.RowsAffected() != 2 {
			return ErrCandidateTaken
		}

		err = tx.QueryRow(txCtx, `
INSERT INTO matches (
	id,
	user_a_id,
	user_b_id,
	active,
	created_at,
	expires_at
) VALUES ($1, $2, $3, TRUE, NOW(), $4)
RETURNING created_at
`, match.ID, match.UserAID, match.UserBID, match.ExpiresAt).Scan(&match.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert match: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Match{}, err
	}

	return match, nil
}

func (r *MatchRepo) GetByID(ctx context.Context, id string) (model.Match, error) {
	if id == "" {
		return model.Match{}, fmt.Errorf("match id is required")
	}
	if r.pool == nil {
		return model.Match{}, fmt.Errorf("postgres pool is nil")
	}

	var m model.Match
	err := r.pool.QueryRow(ctx, `
SELECT id, user_a_id, user_b_id, active, created_at, expires_at
FROM matches
WHERE id = $1
`, id).Scan(&m.ID, &m.UserAID, &m.UserBID, &m.Active, &m.CreatedAt, &m.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, ErrMatchNotFound
		}
		return model.Match{}, fmt.Errorf("get match: %w", err)
	}

	return m, nil
}

// GetActiveBetween looks up an active match linking the two users in either
// orientation.
func (r *MatchRepo) GetActiveBetween(ctx context.Context, userA, userB string) (model.Match, error) {
	if userA == "" || userB == "" {
		return model.Match{}, fmt.Errorf("both user ids are required")
	}
	if r.pool == nil {
		return model.Match{}, fmt.Errorf("postgres pool is nil")
	}

	var m model.Match
	err := r.pool.QueryRow(ctx, `
SELECT id, user_a_id, user_b_id, active, created_at, expires_at
FROM matches
WHERE active = TRUE
	AND (
		(user_a_id = $1 AND user_b_id = $2)
		OR (user_a_id = $2 AND user_b_id = $1)
	)
LIMIT 1
`, userA, userB).Scan(&m.ID, &m.UserAID, &m.UserBID, &m.Active, &m.CreatedAt, &m.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, ErrMatchNotFound
		}
		return model.Match{}, fmt.Errorf("get active match between users: %w", err)
	}

	return m, nil
}

func (r *MatchRepo) GetActiveForUser(ctx context.Context, userID string) (model.Match, error) {
	if userID == "" {
		return model.Match{}, fmt.Errorf("user id is required")
	}
	if r.pool == nil {
		return model.Match{}, fmt.Errorf("postgres pool is nil")
	}

	var m model.Match
	err := r.pool.QueryRow(ctx, `
SELECT id, user_a_id, user_b_id, active, created_at, expires_at
FROM matches
WHERE active = TRUE AND (user_a_id = $1 OR user_b_id = $1)
LIMIT 1
`, userID).Scan(&m.ID, &m.UserAID, &m.UserBID, &m.Active, &m.CreatedAt, &m.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, ErrMatchNotFound
		}
		return model.Match{}, fmt.Errorf("get active match for user: %w", err)
	}

	return m, nil
}

func (r *MatchRepo) ListExpired(ctx context.Context, now time.Time) ([]model.Match, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, user_a_id, user_b_id, active, created_at, expires_at
FROM matches
WHERE active = TRUE AND expires_at < $1
ORDER BY expires_at, id
`, now)
	if err != nil {
		return nil, fmt.Errorf("list expired matches: %w", err)
	}
	defer rows.Close()

	items := make([]model.Match, 0)
	for rows.Next() {
		var m model.Match
		if err := rows.Scan(&m.ID, &m.UserAID, &m.UserBID, &m.Active, &m.CreatedAt, &m.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan expired match: %w", err)
		}
		items = append(items, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate expired matches: %w", rows.Err())
	}

	return items, nil
}

// Deactivate flips active to false. The filter makes the write a no-op for
// records already deactivated, which keeps repeated sweeps idempotent.
func (r *MatchRepo) Deactivate(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("match id is required")
	}
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	result, err := r.pool.Exec(ctx, `
UPDATE matches
SET active = FALSE
WHERE id = $1 AND active = TRUE
`, id)
	if err != nil {
		return false, fmt.Errorf("deactivate match: %w", err)
	}

	return result.RowsAffected() > 0, nil
}
