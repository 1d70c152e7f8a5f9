package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJournal_Turns(t *testing.T) {
	t.Parallel()

	t.Run("User turns reject empty text", func(t *testing.T) {
		journal, err := NewJournal("user-1")
		assert.NoError(t, err)

		assert.ErrorIs(t, journal.AppendUserTurn("   "), ErrEmptyReflection)
		assert.Empty(t, journal.Turns)
	})

	t.Run("Turns alternate and LastAITurn finds the newest AI turn", func(t *testing.T) {
		journal, _ := NewJournal("user-1")

		assert.NoError(t, journal.AppendUserTurn("I skipped my run today"))
		journal.AppendAITurn("That happens. What got in the way?", []string{"time pressure", "energy"})
		assert.NoError(t, journal.AppendUserTurn("I overslept"))
		journal.AppendAITurn("Try laying out your gear the night before.", nil)

		assert.Len(t, journal.Turns, 4)

		last := journal.LastAITurn()
		assert.NotNil(t, last)
		assert.Equal(t, "Try laying out your gear the night before.", last.Text)
		assert.Empty(t, last.Suggestions)
	})

	t.Run("LastAITurn is nil before any AI response", func(t *testing.T) {
		journal, _ := NewJournal("user-1")
		_ = journal.AppendUserTurn("first note")

		assert.Nil(t, journal.LastAITurn())
	})
}

func TestNewReflectionEntry(t *testing.T) {
	t.Parallel()

	t.Run("Success with habit snapshot", func(t *testing.T) {
		entry, err := NewReflectionEntry("user-1", "  felt great today  ", "habit-9", "Morning Run")

		assert.NoError(t, err)
		assert.Equal(t, "felt great today", entry.Text)
		assert.Equal(t, "habit-9", entry.HabitID)
		assert.Equal(t, "Morning Run", entry.HabitTitle)
		assert.NotEmpty(t, entry.ID)
	})

	t.Run("Fail on empty text", func(t *testing.T) {
		_, err := NewReflectionEntry("user-1", "", "", "")
		assert.ErrorIs(t, err, ErrEmptyReflection)
	})
}
