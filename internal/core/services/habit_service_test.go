package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsu-emily/punchie-pass/internal/adapters/repository"
	"github.com/hsu-emily/punchie-pass/internal/core/domain"
)

type recordingNotifier struct {
	mu  sync.Mutex
	ids []string
}

func (n *recordingNotifier) Enqueue(habitID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ids = append(n.ids, habitID)
}

func (n *recordingNotifier) enqueued() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.ids...)
}

func newHabitServiceFixture() (*HabitService, *repository.InMemoryHabitRepository, *recordingNotifier) {
	repo := repository.NewInMemoryHabitRepository()
	notifier := &recordingNotifier{}
	return NewHabitService(repo, notifier), repo, notifier
}

func createHabit(t *testing.T, svc *HabitService, userID string, target int) *domain.Habit {
	t.Helper()
	habit, err := svc.Create(context.Background(), CreateHabitInput{
		UserID:        userID,
		Title:         "Morning Run",
		TimeWindow:    domain.TimeWindowDaily,
		TargetPunches: target,
	})
	require.NoError(t, err)
	return habit
}

func TestHabitService_Punch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("Punch below target does not complete", func(t *testing.T) {
		svc, _, notifier := newHabitServiceFixture()
		habit := createHabit(t, svc, "user-1", 3)

		completed, err := svc.Punch(ctx, habit.ID, "user-1")

		assert.NoError(t, err)
		assert.False(t, completed)
		assert.Empty(t, notifier.enqueued())

		got, _ := svc.GetByID(ctx, habit.ID, "user-1")
		assert.Equal(t, 1, got.CurrentPunches)
		assert.Len(t, got.PunchLog, 1)
	})

	t.Run("Final punch completes exactly once and notifies", func(t *testing.T) {
		svc, _, notifier := newHabitServiceFixture()
		habit := createHabit(t, svc, "user-1", 2)

		completed, err := svc.Punch(ctx, habit.ID, "user-1")
		assert.NoError(t, err)
		assert.False(t, completed)

		completed, err = svc.Punch(ctx, habit.ID, "user-1")
		assert.NoError(t, err)
		assert.True(t, completed)

		// A third punch is a no-op: no error, no second completion.
		completed, err = svc.Punch(ctx, habit.ID, "user-1")
		assert.NoError(t, err)
		assert.False(t, completed)

		got, _ := svc.GetByID(ctx, habit.ID, "user-1")
		assert.Equal(t, 2, got.CurrentPunches)
		assert.Equal(t, []string{habit.ID}, notifier.enqueued())
	})

	t.Run("Punching someone else's habit reads as not found", func(t *testing.T) {
		svc, _, _ := newHabitServiceFixture()
		habit := createHabit(t, svc, "user-1", 3)

		_, err := svc.Punch(ctx, habit.ID, "user-2")

		assert.ErrorIs(t, err, domain.ErrHabitNotFound)
	})

	// Cross-session punch racing is settled by the store's counter guard, not
	// by client coordination: the counter can never pass the target and the
	// completion signal fires for exactly one of the racers. Which punches win
	// stays last-write-wins.
	t.Run("Racing punches stop at the target and complete once", func(t *testing.T) {
		svc, _, notifier := newHabitServiceFixture()
		habit := createHabit(t, svc, "user-1", 5)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.Punch(ctx, habit.ID, "user-1")
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := svc.GetByID(ctx, habit.ID, "user-1")
		require.NoError(t, err)
		assert.Equal(t, 5, got.CurrentPunches)
		assert.Len(t, got.PunchLog, 5)
		assert.Equal(t, []string{habit.ID}, notifier.enqueued())
	})

	t.Run("Punch log sequence numbers are dense", func(t *testing.T) {
		svc, _, _ := newHabitServiceFixture()
		habit := createHabit(t, svc, "user-1", 5)

		for i := 0; i < 3; i++ {
			_, err := svc.Punch(ctx, habit.ID, "user-1")
			assert.NoError(t, err)
		}

		got, _ := svc.GetByID(ctx, habit.ID, "user-1")
		require.Len(t, got.PunchLog, 3)
		for i, event := range got.PunchLog {
			assert.Equal(t, i+1, event.Seq)
		}
	})
}

func TestHabitService_UndoAndReset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("Undo rolls back the newest punch", func(t *testing.T) {
		svc, _, _ := newHabitServiceFixture()
		habit := createHabit(t, svc, "user-1", 3)
		_, _ = svc.Punch(ctx, habit.ID, "user-1")
		_, _ = svc.Punch(ctx, habit.ID, "user-1")

		got, err := svc.Undo(ctx, habit.ID, "user-1")

		assert.NoError(t, err)
		assert.Equal(t, 1, got.CurrentPunches)
		assert.Len(t, got.PunchLog, 1)
	})

	t.Run("Undo at zero is a quiet no-op", func(t *testing.T) {
		svc, _, _ := newHabitServiceFixture()
		habit := createHabit(t, svc, "user-1", 3)

		got, err := svc.Undo(ctx, habit.ID, "user-1")

		assert.NoError(t, err)
		assert.Equal(t, 0, got.CurrentPunches)
	})

	t.Run("Reset clears progress, config survives", func(t *testing.T) {
		svc, _, _ := newHabitServiceFixture()
		habit := createHabit(t, svc, "user-1", 3)
		_, _ = svc.Punch(ctx, habit.ID, "user-1")

		got, err := svc.Reset(ctx, habit.ID, "user-1")

		assert.NoError(t, err)
		assert.Equal(t, 0, got.CurrentPunches)
		assert.Empty(t, got.PunchLog)
		assert.NotNil(t, got.LastResetAt)
		assert.Equal(t, "Morning Run", got.Title)
	})
}

func TestHabitService_Update(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("Empty fields keep existing values", func(t *testing.T) {
		svc, _, _ := newHabitServiceFixture()
		habit := createHabit(t, svc, "user-1", 3)

		got, err := svc.Update(ctx, UpdateHabitInput{
			ID:     habit.ID,
			UserID: "user-1",
			Reward: "Ice cream",
		})

		assert.NoError(t, err)
		assert.Equal(t, "Morning Run", got.Title)
		assert.Equal(t, "Ice cream", got.Reward)
		assert.Equal(t, 3, got.TargetPunches)
	})

	t.Run("Theme pointer distinguishes absent from empty", func(t *testing.T) {
		svc, _, _ := newHabitServiceFixture()
		habit, err := svc.Create(ctx, CreateHabitInput{
			UserID:        "user-1",
			Title:         "Hydrate",
			TimeWindow:    domain.TimeWindowDaily,
			TargetPunches: 8,
			Theme:         domain.Theme{Emoji: "💧"},
		})
		require.NoError(t, err)

		got, err := svc.Update(ctx, UpdateHabitInput{ID: habit.ID, UserID: "user-1"})
		assert.NoError(t, err)
		assert.Equal(t, "💧", got.Theme.Emoji)

		got, err = svc.Update(ctx, UpdateHabitInput{ID: habit.ID, UserID: "user-1", Theme: &domain.Theme{}})
		assert.NoError(t, err)
		assert.Empty(t, got.Theme.Emoji)
	})
}

func TestHabitService_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _, _ := newHabitServiceFixture()
	habit := createHabit(t, svc, "user-1", 3)

	assert.ErrorIs(t, svc.Delete(ctx, habit.ID, "user-2"), domain.ErrHabitNotFound)
	assert.NoError(t, svc.Delete(ctx, habit.ID, "user-1"))

	_, err := svc.GetByID(ctx, habit.ID, "user-1")
	assert.ErrorIs(t, err, domain.ErrHabitNotFound)
}
