package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/hsu-emily/punchie-pass/internal/core/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresReflectionRepository stores the legacy flat reflection log.
type PostgresReflectionRepository struct {
	db *sqlx.DB
}

func NewPostgresReflectionRepository(db *sqlx.DB) *PostgresReflectionRepository {
	return &PostgresReflectionRepository{db: db}
}

func (r *PostgresReflectionRepository) Add(ctx context.Context, entry *domain.ReflectionEntry) error {
	query := `
        INSERT INTO reflections (id, user_id, text, habit_id, habit_title, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.Text, entry.HabitID, entry.HabitTitle, entry.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("reflection %s already recorded", entry.ID)
		}
		return fmt.Errorf("failed to insert reflection: %w", err)
	}

	return nil
}

func (r *PostgresReflectionRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.ReflectionEntry, error) {
	query := `
        SELECT id, user_id, text, habit_id, habit_title, created_at
        FROM reflections
        WHERE user_id = $1
        ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var entries []*domain.ReflectionEntry

	for rows.Next() {
		var e domain.ReflectionEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Text, &e.HabitID, &e.HabitTitle, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("row scan error: %w", err)
		}
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}
