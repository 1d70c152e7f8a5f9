package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hsu-emily/punchie-pass/internal/core/domain"
	"github.com/jmoiron/sqlx"
)

type PostgresJournalRepository struct {
	db *sqlx.DB
}

func NewPostgresJournalRepository(db *sqlx.DB) *PostgresJournalRepository {
	return &PostgresJournalRepository{db: db}
}

func (r *PostgresJournalRepository) scanJournal(row scannable) (*domain.Journal, error) {
	var j domain.Journal
	var turnsJSON []byte

	if err := row.Scan(&j.ID, &j.UserID, &turnsJSON, &j.CreatedAt, &j.UpdatedAt); err != nil {
		return nil, err
	}

	if len(turnsJSON) > 0 {
		if err := json.Unmarshal(turnsJSON, &j.Turns); err != nil {
			return nil, fmt.Errorf("failed to unmarshal turns: %w", err)
		}
	}
	if j.Turns == nil {
		j.Turns = []domain.Turn{}
	}

	return &j, nil
}

func (r *PostgresJournalRepository) Create(ctx context.Context, j *domain.Journal) error {
	turnsJSON, err := json.Marshal(j.Turns)
	if err != nil {
		return fmt.Errorf("failed to marshal turns: %w", err)
	}

	query := `
        INSERT INTO journals (id, user_id, turns, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.ExecContext(ctx, query, j.ID, j.UserID, turnsJSON, j.CreatedAt, j.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert journal: %w", err)
	}

	return nil
}

func (r *PostgresJournalRepository) GetByID(ctx context.Context, id string) (*domain.Journal, error) {
	query := `SELECT id, user_id, turns, created_at, updated_at FROM journals WHERE id = $1`

	j, err := r.scanJournal(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJournalNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return j, nil
}

func (r *PostgresJournalRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Journal, error) {
	query := `
        SELECT id, user_id, turns, created_at, updated_at
        FROM journals
        WHERE user_id = $1
        ORDER BY updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var journals []*domain.Journal

	for rows.Next() {
		j, err := r.scanJournal(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan error: %w", err)
		}
		journals = append(journals, j)
	}

	return journals, rows.Err()
}

// Update overwrites the stored turn array wholesale; turns are never patched
// individually.
func (r *PostgresJournalRepository) Update(ctx context.Context, j *domain.Journal) error {
	turnsJSON, err := json.Marshal(j.Turns)
	if err != nil {
		return fmt.Errorf("failed to marshal turns: %w", err)
	}

	query := `UPDATE journals SET turns = $1, updated_at = NOW() WHERE id = $2`

	res, err := r.db.ExecContext(ctx, query, turnsJSON, j.ID)
	if err != nil {
		return fmt.Errorf("update query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrJournalNotFound
	}

	return nil
}

func (r *PostgresJournalRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM journals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrJournalNotFound
	}

	return nil
}
