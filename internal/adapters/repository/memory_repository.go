package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/hsu-emily/punchie-pass/internal/core/domain"
)

// InMemoryHabitRepository backs tests and local development without a
// database. RecordPunch applies the same counter guard the SQL store does.
type InMemoryHabitRepository struct {
	store map[string]*domain.Habit

	mu sync.RWMutex
}

func NewInMemoryHabitRepository() *InMemoryHabitRepository {
	return &InMemoryHabitRepository{
		store: make(map[string]*domain.Habit),
	}
}

func cloneHabit(h *domain.Habit) *domain.Habit {
	clone := *h
	clone.Icons = append([]string(nil), h.Icons...)
	clone.PunchLog = append([]domain.PunchEvent(nil), h.PunchLog...)
	return &clone
}

func (r *InMemoryHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[habit.ID] = cloneHabit(habit)
	return nil
}

func (r *InMemoryHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habit, ok := r.store[id]
	if !ok {
		return nil, domain.ErrHabitNotFound
	}
	return cloneHabit(habit), nil
}

func (r *InMemoryHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var habits []*domain.Habit
	for _, h := range r.store {
		if h.UserID == userID {
			habits = append(habits, cloneHabit(h))
		}
	}

	sort.Slice(habits, func(i, j int) bool {
		return habits[i].CreatedAt.After(habits[j].CreatedAt)
	})

	return habits, nil
}

func (r *InMemoryHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[habit.ID]; !ok {
		return domain.ErrHabitNotFound
	}

	r.store[habit.ID] = cloneHabit(habit)
	return nil
}

func (r *InMemoryHabitRepository) RecordPunch(ctx context.Context, id string, event domain.PunchEvent) (*domain.Habit, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	habit, ok := r.store[id]
	if !ok {
		return nil, false, domain.ErrHabitNotFound
	}

	applied := habit.CurrentPunches < habit.TargetPunches
	if applied {
		habit.CurrentPunches++
		habit.PunchLog = append(habit.PunchLog, event)
		at := event.At
		habit.LastPunchedAt = &at
		habit.UpdatedAt = event.At
	}

	return cloneHabit(habit), applied, nil
}

func (r *InMemoryHabitRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return domain.ErrHabitNotFound
	}

	delete(r.store, id)
	return nil
}

// InMemoryJournalRepository mirrors the journal store for tests.
type InMemoryJournalRepository struct {
	store map[string]*domain.Journal

	mu sync.RWMutex
}

func NewInMemoryJournalRepository() *InMemoryJournalRepository {
	return &InMemoryJournalRepository{
		store: make(map[string]*domain.Journal),
	}
}

func cloneJournal(j *domain.Journal) *domain.Journal {
	clone := *j
	clone.Turns = make([]domain.Turn, len(j.Turns))
	copy(clone.Turns, j.Turns)
	return &clone
}

func (r *InMemoryJournalRepository) Create(ctx context.Context, journal *domain.Journal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[journal.ID] = cloneJournal(journal)
	return nil
}

func (r *InMemoryJournalRepository) GetByID(ctx context.Context, id string) (*domain.Journal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, ok := r.store[id]
	if !ok {
		return nil, domain.ErrJournalNotFound
	}
	return cloneJournal(j), nil
}

func (r *InMemoryJournalRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Journal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var journals []*domain.Journal
	for _, j := range r.store {
		if j.UserID == userID {
			journals = append(journals, cloneJournal(j))
		}
	}

	sort.Slice(journals, func(i, j int) bool {
		return journals[i].UpdatedAt.After(journals[j].UpdatedAt)
	})

	return journals, nil
}

func (r *InMemoryJournalRepository) Update(ctx context.Context, journal *domain.Journal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[journal.ID]; !ok {
		return domain.ErrJournalNotFound
	}

	r.store[journal.ID] = cloneJournal(journal)
	return nil
}

func (r *InMemoryJournalRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return domain.ErrJournalNotFound
	}

	delete(r.store, id)
	return nil
}

// InMemoryReflectionRepository mirrors the legacy flat reflection log.
type InMemoryReflectionRepository struct {
	entries []*domain.ReflectionEntry

	mu sync.RWMutex
}

func NewInMemoryReflectionRepository() *InMemoryReflectionRepository {
	return &InMemoryReflectionRepository{}
}

func (r *InMemoryReflectionRepository) Add(ctx context.Context, entry *domain.ReflectionEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *entry
	r.entries = append(r.entries, &clone)
	return nil
}

func (r *InMemoryReflectionRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.ReflectionEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.ReflectionEntry
	for _, e := range r.entries {
		if e.UserID == userID {
			clone := *e
			out = append(out, &clone)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}
