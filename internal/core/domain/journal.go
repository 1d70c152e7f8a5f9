package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrJournalNotFound  = errors.New("journal not found")
	ErrEmptyReflection  = errors.New("reflection text cannot be empty")
	ErrInvalidTurnIndex = errors.New("suggestion index out of range")
)

const (
	TurnRoleUser = "user"
	TurnRoleAI   = "ai"
)

// Turn is one message of a reflection conversation. AI turns may carry
// follow-up suggestion strings the user can pick up on.
type Turn struct {
	Role        string    `json:"role"`
	Text        string    `json:"text"`
	Suggestions []string  `json:"suggestions,omitempty"`
	At          time.Time `json:"at"`
}

// Journal is a persisted reflection conversation. Turns are append-only from
// the caller's perspective; persistence overwrites the whole turn array.
type Journal struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Turns     []Turn    `json:"turns"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewJournal(userID string) (*Journal, error) {
	if userID == "" {
		return nil, ErrHabitInvalidUserID
	}

	now := time.Now().UTC()
	return &Journal{
		ID:        uuid.New().String(),
		UserID:    userID,
		Turns:     []Turn{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (j *Journal) AppendUserTurn(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyReflection
	}

	now := time.Now().UTC()
	j.Turns = append(j.Turns, Turn{Role: TurnRoleUser, Text: text, At: now})
	j.UpdatedAt = now
	return nil
}

func (j *Journal) AppendAITurn(text string, suggestions []string) {
	now := time.Now().UTC()
	j.Turns = append(j.Turns, Turn{Role: TurnRoleAI, Text: text, Suggestions: suggestions, At: now})
	j.UpdatedAt = now
}

// LastAITurn returns the most recent AI turn, or nil when none exists yet.
func (j *Journal) LastAITurn() *Turn {
	for i := len(j.Turns) - 1; i >= 0; i-- {
		if j.Turns[i].Role == TurnRoleAI {
			return &j.Turns[i]
		}
	}
	return nil
}

// ReflectionEntry is the legacy flat reflection log: one free-text note with
// a snapshot of the habit it was written against.
type ReflectionEntry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Text       string    `json:"text"`
	HabitID    string    `json:"habit_id,omitempty"`
	HabitTitle string    `json:"habit_title,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewReflectionEntry(userID, text, habitID, habitTitle string) (*ReflectionEntry, error) {
	if userID == "" {
		return nil, ErrHabitInvalidUserID
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyReflection
	}

	return &ReflectionEntry{
		ID:         uuid.New().String(),
		UserID:     userID,
		Text:       strings.TrimSpace(text),
		HabitID:    habitID,
		HabitTitle: habitTitle,
		CreatedAt:  time.Now().UTC(),
	}, nil
}
