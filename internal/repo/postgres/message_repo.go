package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivanmatek/ember/internal/domain/model"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Create(ctx context.Context, matchID, senderID, content string) (model.Message, error) {
	if matchID == "" || senderID == "" || content == "" {
		return model.Message{}, fmt.Errorf("invalid message payload")
	}
	if r.pool == nil {
		return model.Message{}, fmt.Errorf("postgres pool is nil")
	}

	msg := model.Message{
		ID:       uuid.NewString(),
		MatchID:  matchID,
		SenderID: senderID,
		Content:  content,
	}

	err := r.pool.QueryRow(ctx, `
INSERT INTO messages (
	id,
	match_id,
	sender_id,
	content,
	created_at
) VALUES ($1, $2, $3, $4, NOW())
RETURNING created_at
`, msg.ID, msg.MatchID, msg.SenderID, msg.Content).Scan(&msg.CreatedAt)
	if err != nil {
		return model.Message{}, fmt.Errorf("create message: %w", err)
	}

	return msg, nil
}

func (r *MessageRepo) ListByMatch(ctx context.Context, matchID string, limit int) ([]model.Message, error) {
	if matchID == "" {
		return nil, fmt.Errorf("match id is required")
	}
	if limit <= 0 {
		limit = 500
	}
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, match_id, sender_id, content, created_at
FROM messages
WHERE match_id = $1
ORDER BY created_at, id
LIMIT $2
`, matchID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	items := make([]model.Message, 0, limit)
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.MatchID, &m.SenderID, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		items = append(items, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate messages: %w", rows.Err())
	}

	return items, nil
}
