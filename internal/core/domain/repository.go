package domain

import (
	"context"
	"errors"
)

var (
	ErrHabitNotFound = errors.New("habit not found")
	ErrUnauthorized  = errors.New("resource does not belong to this user")
)

type HabitRepository interface {
	// Create persists a new habit definition in the storage.
	Create(ctx context.Context, habit *Habit) error

	// GetByID retrieves a habit by its unique identifier.
	GetByID(ctx context.Context, id string) (*Habit, error)

	// ListByUserID retrieves all habits owned by a specific user.
	ListByUserID(ctx context.Context, userID string) ([]*Habit, error)

	// Update modifies the state of an existing habit.
	Update(ctx context.Context, habit *Habit) error

	// RecordPunch applies one punch server-side: the counter increments only
	// while below the target and the given event is appended to the log. The
	// returned bool reports whether the punch landed; a card that is already
	// full comes back unchanged with false. ErrHabitNotFound only when no
	// habit with the id exists.
	RecordPunch(ctx context.Context, id string, event PunchEvent) (*Habit, bool, error)

	// Delete permanently removes a habit from the system.
	Delete(ctx context.Context, id string) error
}

type JournalRepository interface {
	Create(ctx context.Context, journal *Journal) error
	GetByID(ctx context.Context, id string) (*Journal, error)
	ListByUserID(ctx context.Context, userID string) ([]*Journal, error)

	// Update overwrites the stored conversation with the full turn array.
	Update(ctx context.Context, journal *Journal) error

	Delete(ctx context.Context, id string) error
}

type ReflectionRepository interface {
	Add(ctx context.Context, entry *ReflectionEntry) error
	ListByUserID(ctx context.Context, userID string) ([]*ReflectionEntry, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
