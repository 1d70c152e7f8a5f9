package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hsu-emily/punchie-pass/internal/core/domain"
	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresHabitRepository struct {
	db *sqlx.DB
}

func NewPostgresHabitRepository(db *sqlx.DB) *PostgresHabitRepository {
	return &PostgresHabitRepository{db: db}
}

type scannable interface {
	Scan(dest ...interface{}) error
}

const habitColumns = `
        id, user_id, title, description, reward, time_window, card_template_id,
        icons, theme, target_punches, current_punches, punch_log,
        last_punched_at, last_reset_at, share_image_url, created_at, updated_at`

func (r *PostgresHabitRepository) scanRow(row scannable) (*domain.Habit, error) {
	var h domain.Habit
	var iconsJSON, themeJSON, logJSON []byte

	err := row.Scan(
		&h.ID, &h.UserID, &h.Title, &h.Description, &h.Reward, &h.TimeWindow, &h.CardTemplateID,
		&iconsJSON, &themeJSON, &h.TargetPunches, &h.CurrentPunches, &logJSON,
		&h.LastPunchedAt, &h.LastResetAt, &h.ShareImageURL, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(iconsJSON) > 0 {
		if err := json.Unmarshal(iconsJSON, &h.Icons); err != nil {
			return nil, fmt.Errorf("failed to unmarshal icons: %w", err)
		}
	}
	if len(themeJSON) > 0 {
		if err := json.Unmarshal(themeJSON, &h.Theme); err != nil {
			return nil, fmt.Errorf("failed to unmarshal theme: %w", err)
		}
	}
	if len(logJSON) > 0 {
		if err := json.Unmarshal(logJSON, &h.PunchLog); err != nil {
			return nil, fmt.Errorf("failed to unmarshal punch log: %w", err)
		}
	}
	if h.PunchLog == nil {
		h.PunchLog = []domain.PunchEvent{}
	}

	return &h, nil
}

func marshalHabitJSON(h *domain.Habit) (icons, theme, punchLog []byte, err error) {
	if icons, err = json.Marshal(h.Icons); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal icons: %w", err)
	}
	if theme, err = json.Marshal(h.Theme); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal theme: %w", err)
	}
	if punchLog, err = json.Marshal(h.PunchLog); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal punch log: %w", err)
	}
	return icons, theme, punchLog, nil
}

func (r *PostgresHabitRepository) Create(ctx context.Context, h *domain.Habit) error {
	iconsJSON, themeJSON, logJSON, err := marshalHabitJSON(h)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO habits (
            id, user_id, title, description, reward, time_window, card_template_id,
            icons, theme, target_punches, current_punches, punch_log,
            last_punched_at, last_reset_at, share_image_url, created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7,
            $8, $9, $10, $11, $12,
            $13, $14, $15, $16, $17
        )`

	_, err = r.db.ExecContext(ctx, query,
		h.ID, h.UserID, h.Title, h.Description, h.Reward, h.TimeWindow, h.CardTemplateID,
		iconsJSON, themeJSON, h.TargetPunches, h.CurrentPunches, logJSON,
		h.LastPunchedAt, h.LastResetAt, h.ShareImageURL, h.CreatedAt, h.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert habit: %w", err)
	}

	return nil
}

func (r *PostgresHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	query := `SELECT` + habitColumns + ` FROM habits WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)

	h, err := r.scanRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return h, nil
}

func (r *PostgresHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	query := `SELECT` + habitColumns + `
        FROM habits
        WHERE user_id = $1
        ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var habits []*domain.Habit

	for rows.Next() {
		h, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan error: %w", err)
		}
		habits = append(habits, h)
	}

	return habits, rows.Err()
}

func (r *PostgresHabitRepository) Update(ctx context.Context, h *domain.Habit) error {
	iconsJSON, themeJSON, logJSON, err := marshalHabitJSON(h)
	if err != nil {
		return err
	}

	query := `
        UPDATE habits SET
            title=$1, description=$2, reward=$3, time_window=$4, card_template_id=$5,
            icons=$6, theme=$7, target_punches=$8, current_punches=$9, punch_log=$10,
            last_punched_at=$11, last_reset_at=$12, share_image_url=$13, updated_at=NOW()
        WHERE id=$14`

	res, err := r.db.ExecContext(ctx, query,
		h.Title, h.Description, h.Reward, h.TimeWindow, h.CardTemplateID,
		iconsJSON, themeJSON, h.TargetPunches, h.CurrentPunches, logJSON,
		h.LastPunchedAt, h.LastResetAt, h.ShareImageURL,
		h.ID,
	)
	if err != nil {
		return fmt.Errorf("update query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}

// RecordPunch applies the punch server-side. The counter guard runs inside
// the UPDATE, so two sessions racing on the same card can never push the
// counter past the target: the losing punch matches zero rows and the
// current row is returned unchanged with applied=false.
func (r *PostgresHabitRepository) RecordPunch(ctx context.Context, id string, event domain.PunchEvent) (*domain.Habit, bool, error) {
	eventJSON, err := json.Marshal([]domain.PunchEvent{event})
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal punch event: %w", err)
	}

	query := `
        UPDATE habits SET
            current_punches = current_punches + 1,
            punch_log = punch_log || $2::jsonb,
            last_punched_at = $3,
            updated_at = NOW()
        WHERE id = $1 AND current_punches < target_punches
        RETURNING` + habitColumns

	row := r.db.QueryRowContext(ctx, query, id, eventJSON, event.At)

	h, err := r.scanRow(row)
	if err == nil {
		return h, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("punch query failed: %w", err)
	}

	// Guard matched no row: the habit is either gone or already complete.
	h, err = r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return h, false, nil
}

func (r *PostgresHabitRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM habits WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}
