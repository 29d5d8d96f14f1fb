package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wuwenbin0122/goal-planner/internal/models"
)

// PostgresStore keeps turns as rows of conversation_turns ordered by seq.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) GetOrCreate(ctx context.Context, sessionID string) ([]models.Turn, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT role, content, created_at FROM conversation_turns WHERE session_id = $1 ORDER BY seq",
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("postgres: query conversation: %w", err)
	}
	defer rows.Close()

	turns := []models.Turn{}
	for rows.Next() {
		var (
			role      string
			content   string
			createdAt time.Time
		)
		if err := rows.Scan(&role, &content, &createdAt); err != nil {
			return nil, fmt.Errorf("postgres: scan turn: %w", err)
		}
		turns = append(turns, models.Turn{Role: models.Role(role), Content: content, CreatedAt: createdAt})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: read conversation: %w", err)
	}

	return turns, nil
}

func (s *PostgresStore) Append(ctx context.Context, sessionID string, turn models.Turn) error {
	createdAt := turn.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		"INSERT INTO conversation_turns (session_id, role, content, created_at) VALUES ($1, $2, $3, $4)",
		sessionID, string(turn.Role), turn.Content, createdAt)
	if err != nil {
		return fmt.Errorf("postgres: insert turn: %w", err)
	}
	return nil
}
