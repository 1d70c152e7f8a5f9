package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrHabitTitleEmpty    = errors.New("habit title cannot be empty")
	ErrHabitTitleTooLong  = errors.New("habit title is too long (max 100 chars)")
	ErrHabitDescTooLong   = errors.New("habit description is too long (max 500 chars)")
	ErrHabitInvalidUserID = errors.New("invalid user id")
	ErrInvalidTarget      = errors.New("target punches must be a positive number")
	ErrInvalidTimeWindow  = errors.New("invalid time window (must be daily, weekly, or custom)")
	ErrTooManyIcons       = errors.New("a habit supports at most 2 icon slots")
	ErrInvalidColor       = errors.New("invalid color format (must be #RRGGBB)")
)

var colorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

const (
	TimeWindowDaily  = "daily"
	TimeWindowWeekly = "weekly"
	TimeWindowCustom = "custom"

	DefaultTemplateID = "classic"

	MaxTitleLen = 100
	MaxDescLen  = 500
	MaxIcons    = 2
)

// Theme is the emoji/color pair rendered when a habit has no card artwork.
type Theme struct {
	Emoji          string `json:"emoji"`
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
}

// PunchEvent is one entry of a habit's ordered punch log.
type PunchEvent struct {
	At  time.Time `json:"at"`
	Seq int       `json:"seq"`
}

type Habit struct {
	ID             string       `json:"id"`
	UserID         string       `json:"user_id"`
	Title          string       `json:"title"`
	Description    string       `json:"description,omitempty"`
	Reward         string       `json:"reward,omitempty"`
	TimeWindow     string       `json:"time_window"`
	CardTemplateID string       `json:"card_template_id"`
	Icons          []string     `json:"icons,omitempty"`
	Theme          Theme        `json:"theme"`
	TargetPunches  int          `json:"target_punches"`
	CurrentPunches int          `json:"current_punches"`
	PunchLog       []PunchEvent `json:"punch_log"`
	LastPunchedAt  *time.Time   `json:"last_punched_at,omitempty"`
	LastResetAt    *time.Time   `json:"last_reset_at,omitempty"`
	ShareImageURL  string       `json:"share_image_url,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func validateHabitFields(title, desc, timeWindow string, target int, icons []string, theme Theme) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return ErrHabitTitleEmpty
	}
	if len(trimmed) > MaxTitleLen {
		return ErrHabitTitleTooLong
	}

	if len(strings.TrimSpace(desc)) > MaxDescLen {
		return ErrHabitDescTooLong
	}

	if target < 1 {
		return ErrInvalidTarget
	}

	switch timeWindow {
	case TimeWindowDaily, TimeWindowWeekly, TimeWindowCustom:
	default:
		return ErrInvalidTimeWindow
	}

	if len(icons) > MaxIcons {
		return ErrTooManyIcons
	}

	for _, c := range []string{theme.PrimaryColor, theme.SecondaryColor} {
		if c != "" && !colorRegex.MatchString(c) {
			return ErrInvalidColor
		}
	}

	return nil
}

func NewHabit(userID, title, description, reward, timeWindow, templateID string, target int, icons []string, theme Theme) (*Habit, error) {
	if userID == "" {
		return nil, ErrHabitInvalidUserID
	}

	if timeWindow == "" {
		timeWindow = TimeWindowDaily
	}

	cleanDesc := strings.TrimSpace(description)

	if err := validateHabitFields(title, cleanDesc, timeWindow, target, icons, theme); err != nil {
		return nil, err
	}

	if templateID == "" {
		templateID = DefaultTemplateID
	}

	now := time.Now().UTC()

	return &Habit{
		ID:             uuid.New().String(),
		UserID:         userID,
		Title:          strings.TrimSpace(title),
		Description:    cleanDesc,
		Reward:         strings.TrimSpace(reward),
		TimeWindow:     timeWindow,
		CardTemplateID: templateID,
		Icons:          icons,
		Theme:          theme,
		TargetPunches:  target,
		CurrentPunches: 0,
		PunchLog:       []PunchEvent{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// IsComplete reports whether the card is full.
func (h *Habit) IsComplete() bool {
	return h.CurrentPunches >= h.TargetPunches
}

// Punch records one completion event. It returns true only when this punch
// fills the card. Punching an already complete habit is a no-op and returns
// false; the counter never exceeds the target.
func (h *Habit) Punch(now time.Time) bool {
	if h.IsComplete() {
		return false
	}

	h.CurrentPunches++
	h.PunchLog = append(h.PunchLog, PunchEvent{At: now, Seq: h.CurrentPunches})
	h.LastPunchedAt = &now
	h.UpdatedAt = now

	return h.IsComplete()
}

// Undo removes the most recent punch. Both the counter and the matching log
// entry roll back together, so len(PunchLog) always equals CurrentPunches.
// Undo on an unpunched habit is a no-op.
func (h *Habit) Undo(now time.Time) bool {
	if h.CurrentPunches == 0 {
		return false
	}

	h.CurrentPunches--
	if n := len(h.PunchLog); n > 0 {
		h.PunchLog = h.PunchLog[:n-1]
	}
	h.UpdatedAt = now

	return true
}

// Reset empties the card: counter to zero, log cleared, reset stamped.
// Title, target, reward, and the rest of the configuration are untouched.
func (h *Habit) Reset(now time.Time) {
	h.CurrentPunches = 0
	h.PunchLog = []PunchEvent{}
	h.LastResetAt = &now
	h.UpdatedAt = now
}

// Update replaces the habit's configuration fields after validation.
// Progress (counter, log, timestamps) is not touched here.
func (h *Habit) Update(title, description, reward, timeWindow, templateID string, target int, icons []string, theme Theme) error {
	cleanDesc := strings.TrimSpace(description)

	if err := validateHabitFields(title, cleanDesc, timeWindow, target, icons, theme); err != nil {
		return err
	}

	if templateID == "" {
		templateID = DefaultTemplateID
	}

	h.Title = strings.TrimSpace(title)
	h.Description = cleanDesc
	h.Reward = strings.TrimSpace(reward)
	h.TimeWindow = timeWindow
	h.CardTemplateID = templateID
	h.Icons = icons
	h.Theme = theme
	h.TargetPunches = target
	h.UpdatedAt = time.Now().UTC()

	return nil
}
