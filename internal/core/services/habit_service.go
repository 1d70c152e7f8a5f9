package services

import (
	"context"
	"time"

	"github.com/hsu-emily/punchie-pass/internal/core/domain"
)

// CompletionNotifier receives the id of a habit whose card just filled so the
// share image can be published in the background.
type CompletionNotifier interface {
	Enqueue(habitID string)
}

// HabitService is the single writer for habit state. Mutations persist to the
// repository before any result is reported, so a failed write never leaves
// the caller believing state changed.
type HabitService struct {
	repo     domain.HabitRepository
	notifier CompletionNotifier
}

func NewHabitService(repo domain.HabitRepository, notifier CompletionNotifier) *HabitService {
	return &HabitService{
		repo:     repo,
		notifier: notifier,
	}
}

type CreateHabitInput struct {
	UserID         string
	Title          string
	Description    string
	Reward         string
	TimeWindow     string
	CardTemplateID string
	TargetPunches  int
	Icons          []string
	Theme          domain.Theme
}

type UpdateHabitInput struct {
	ID             string
	UserID         string
	Title          string
	Description    string
	Reward         string
	TimeWindow     string
	CardTemplateID string
	TargetPunches  int
	Icons          []string
	Theme          *domain.Theme
}

func mergeString(newVal, oldVal string) string {
	if newVal == "" {
		return oldVal
	}
	return newVal
}

func (s *HabitService) Create(ctx context.Context, input CreateHabitInput) (*domain.Habit, error) {
	habit, err := domain.NewHabit(
		input.UserID,
		input.Title,
		input.Description,
		input.Reward,
		input.TimeWindow,
		input.CardTemplateID,
		input.TargetPunches,
		input.Icons,
		input.Theme,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, err
	}

	return habit, nil
}

func (s *HabitService) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *HabitService) GetByID(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}

	return habit, nil
}

// Punch applies one completion event. It returns true only when this punch
// fills the card. An absent or already complete habit is a no-op returning
// false. The increment itself is guarded inside the store, so racing
// sessions cannot push the counter past the target and exactly one of them
// observes the completion; which punch lands is still last-write-wins and
// deliberately unsynchronized (single-session ordering is all that is
// promised).
func (s *HabitService) Punch(ctx context.Context, id, userID string) (bool, error) {
	habit, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return false, err
	}

	if habit.IsComplete() {
		return false, nil
	}

	now := time.Now().UTC()
	event := domain.PunchEvent{At: now, Seq: habit.CurrentPunches + 1}

	updated, applied, err := s.repo.RecordPunch(ctx, id, event)
	if err != nil {
		return false, err
	}

	completed := applied && updated.IsComplete()
	if completed && s.notifier != nil {
		s.notifier.Enqueue(updated.ID)
	}

	return completed, nil
}

// Undo rolls back the latest punch. No-op when the counter is already zero.
func (s *HabitService) Undo(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if !habit.Undo(time.Now().UTC()) {
		return habit, nil
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}

	return habit, nil
}

func (s *HabitService) Reset(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	habit.Reset(time.Now().UTC())

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}

	return habit, nil
}

func (s *HabitService) Update(ctx context.Context, input UpdateHabitInput) (*domain.Habit, error) {
	habit, err := s.GetByID(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	title := mergeString(input.Title, habit.Title)
	desc := mergeString(input.Description, habit.Description)
	reward := mergeString(input.Reward, habit.Reward)
	window := mergeString(input.TimeWindow, habit.TimeWindow)
	template := mergeString(input.CardTemplateID, habit.CardTemplateID)

	target := habit.TargetPunches
	if input.TargetPunches > 0 {
		target = input.TargetPunches
	}

	icons := habit.Icons
	if input.Icons != nil {
		icons = input.Icons
	}

	theme := habit.Theme
	if input.Theme != nil {
		theme = *input.Theme
	}

	if err := habit.Update(title, desc, reward, window, template, target, icons, theme); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}

	return habit, nil
}

func (s *HabitService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.GetByID(ctx, id, userID); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}

// SetShareImageURL stamps the published card image onto the habit. Called by
// the share worker after a successful upload.
func (s *HabitService) SetShareImageURL(ctx context.Context, id, url string) error {
	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	habit.ShareImageURL = url
	habit.UpdatedAt = time.Now().UTC()

	return s.repo.Update(ctx, habit)
}
