package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/hsu-emily/punchie-pass/internal/adapters/llm"
	"github.com/hsu-emily/punchie-pass/internal/core/domain"
)

// CompletionClient is the slice of the completion API the orchestrator needs.
type CompletionClient interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// fallbackAITurn is substituted whenever the completion API fails, so the
// conversation never stalls: the user can always keep typing.
const fallbackAITurn = "I'm sorry, I couldn't gather my thoughts just now. Tell me more and I'll try again."

const coachSystemPrompt = `You are a warm, concise habit coach inside a punch-card habit app.
The user shares reflections about their routines. Respond with encouragement and one
practical observation. Reply ONLY with a JSON object of the shape
{"reply": "...", "suggestions": ["...", "..."]} where suggestions are up to three short
follow-up topics the user might want to explore. No other text.`

const suggestSystemPrompt = `You generate habit ideas for a punch-card habit app.
Reply ONLY with a JSON array of objects shaped
{"title": "...", "description": "...", "reward": "...", "target_punches": 10,
"time_window": "daily", "emoji": "..."}. No other text.`

// aiReply is the JSON payload expected inside a coaching completion.
type aiReply struct {
	Reply       string   `json:"reply"`
	Suggestions []string `json:"suggestions"`
}

// HabitSuggestion is one AI-generated habit idea the client may accept into a
// real habit.
type HabitSuggestion struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Reward        string `json:"reward"`
	TargetPunches int    `json:"target_punches"`
	TimeWindow    string `json:"time_window"`
	Emoji         string `json:"emoji"`
}

// ReflectionService drives the coaching conversation: Input (first free-text
// reflection) -> Feedback (one AI response with suggestion chips) ->
// Conversation (open-ended exchange carrying the full transcript).
type ReflectionService struct {
	journals    domain.JournalRepository
	reflections domain.ReflectionRepository
	habits      domain.HabitRepository
	completions CompletionClient
}

func NewReflectionService(
	journals domain.JournalRepository,
	reflections domain.ReflectionRepository,
	habits domain.HabitRepository,
	completions CompletionClient,
) *ReflectionService {
	return &ReflectionService{
		journals:    journals,
		reflections: reflections,
		habits:      habits,
		completions: completions,
	}
}

// Start opens a journal from an initial reflection: the user turn plus the
// first AI turn are persisted together once the AI responds (or the fallback
// substitutes for it).
func (s *ReflectionService) Start(ctx context.Context, userID, text string) (*domain.Journal, error) {
	journal, err := domain.NewJournal(userID)
	if err != nil {
		return nil, err
	}

	if err := journal.AppendUserTurn(text); err != nil {
		return nil, err
	}

	reply := s.callCoach(ctx, userID, journal)
	journal.AppendAITurn(reply.Reply, reply.Suggestions)

	if err := s.journals.Create(ctx, journal); err != nil {
		return nil, err
	}

	return journal, nil
}

// Continue appends one round-trip (user turn + AI turn) to an existing
// conversation and re-persists the whole transcript.
func (s *ReflectionService) Continue(ctx context.Context, journalID, userID, text string) (*domain.Journal, error) {
	journal, err := s.getOwned(ctx, journalID, userID)
	if err != nil {
		return nil, err
	}

	if err := journal.AppendUserTurn(text); err != nil {
		return nil, err
	}

	reply := s.callCoach(ctx, userID, journal)
	journal.AppendAITurn(reply.Reply, reply.Suggestions)

	if err := s.journals.Update(ctx, journal); err != nil {
		return nil, err
	}

	return journal, nil
}

// SelectSuggestion turns one of the latest AI suggestions into a synthesized
// user turn and continues the conversation with it.
func (s *ReflectionService) SelectSuggestion(ctx context.Context, journalID, userID string, index int) (*domain.Journal, error) {
	journal, err := s.getOwned(ctx, journalID, userID)
	if err != nil {
		return nil, err
	}

	last := journal.LastAITurn()
	if last == nil || index < 0 || index >= len(last.Suggestions) {
		return nil, domain.ErrInvalidTurnIndex
	}

	text := fmt.Sprintf("explore suggestion: %s", last.Suggestions[index])
	return s.Continue(ctx, journalID, userID, text)
}

func (s *ReflectionService) GetJournal(ctx context.Context, journalID, userID string) (*domain.Journal, error) {
	return s.getOwned(ctx, journalID, userID)
}

func (s *ReflectionService) ListJournals(ctx context.Context, userID string) ([]*domain.Journal, error) {
	return s.journals.ListByUserID(ctx, userID)
}

func (s *ReflectionService) DeleteJournal(ctx context.Context, journalID, userID string) error {
	if _, err := s.getOwned(ctx, journalID, userID); err != nil {
		return err
	}
	return s.journals.Delete(ctx, journalID)
}

// AddReflection writes to the legacy flat reflection log.
func (s *ReflectionService) AddReflection(ctx context.Context, userID, text, habitID string) (*domain.ReflectionEntry, error) {
	var habitTitle string
	if habitID != "" {
		if habit, err := s.habits.GetByID(ctx, habitID); err == nil && habit.UserID == userID {
			habitTitle = habit.Title
		}
	}

	entry, err := domain.NewReflectionEntry(userID, text, habitID, habitTitle)
	if err != nil {
		return nil, err
	}

	if err := s.reflections.Add(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

func (s *ReflectionService) ListReflections(ctx context.Context, userID string) ([]*domain.ReflectionEntry, error) {
	return s.reflections.ListByUserID(ctx, userID)
}

// SuggestHabits asks the completion API for habit ideas. Unlike the coaching
// flow, a failure here surfaces to the caller: there is no conversation to
// keep alive.
func (s *ReflectionService) SuggestHabits(ctx context.Context, userID, prompt string) ([]HabitSuggestion, error) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: suggestSystemPrompt},
		{Role: llm.RoleUser, Content: s.habitContext(ctx, userID) + "\n\n" + prompt},
	}

	temp := 0.8
	resp, err := s.completions.Complete(ctx, llm.Request{Messages: messages, Temperature: &temp, MaxTokens: 1024})
	if err != nil {
		return nil, err
	}

	var suggestions []HabitSuggestion
	if err := llm.DecodeInto(resp.Content, &suggestions); err != nil {
		return nil, err
	}

	return suggestions, nil
}

func (s *ReflectionService) getOwned(ctx context.Context, journalID, userID string) (*domain.Journal, error) {
	journal, err := s.journals.GetByID(ctx, journalID)
	if err != nil {
		return nil, err
	}
	if journal.UserID != userID {
		return nil, domain.ErrJournalNotFound
	}
	return journal, nil
}

// callCoach runs one completion round. Transport and parse failures are both
// absorbed into the fixed fallback turn; only the shape of the failure is
// logged differently.
func (s *ReflectionService) callCoach(ctx context.Context, userID string, journal *domain.Journal) aiReply {
	messages := make([]llm.Message, 0, len(journal.Turns)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: coachSystemPrompt})
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: s.habitContext(ctx, userID)})

	for _, turn := range journal.Turns {
		role := llm.RoleUser
		if turn.Role == domain.TurnRoleAI {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: turn.Text})
	}

	temp := 0.7
	resp, err := s.completions.Complete(ctx, llm.Request{Messages: messages, Temperature: &temp, MaxTokens: 768})
	if err != nil {
		log.Printf("reflection: completion call failed: %v", err)
		return aiReply{Reply: fallbackAITurn}
	}

	var reply aiReply
	if err := llm.DecodeInto(resp.Content, &reply); err != nil {
		if errors.Is(err, llm.ErrMalformedPayload) {
			log.Printf("reflection: malformed coach payload: %v", err)
		} else {
			log.Printf("reflection: unexpected decode failure: %v", err)
		}
		return aiReply{Reply: fallbackAITurn}
	}

	if strings.TrimSpace(reply.Reply) == "" {
		reply.Reply = fallbackAITurn
		reply.Suggestions = nil
	}

	return reply
}

// habitContext snapshots the user's habits (id, title, progress only) so the
// coach can reference what the user is actually working on.
func (s *ReflectionService) habitContext(ctx context.Context, userID string) string {
	habits, err := s.habits.ListByUserID(ctx, userID)
	if err != nil || len(habits) == 0 {
		return "The user has no tracked habits yet."
	}

	type snapshot struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		Current  int    `json:"current_punches"`
		Target   int    `json:"target_punches"`
		Complete bool   `json:"complete"`
	}

	snapshots := make([]snapshot, 0, len(habits))
	for _, h := range habits {
		snapshots = append(snapshots, snapshot{
			ID:       h.ID,
			Title:    h.Title,
			Current:  h.CurrentPunches,
			Target:   h.TargetPunches,
			Complete: h.IsComplete(),
		})
	}

	data, err := json.Marshal(snapshots)
	if err != nil {
		return "The user has no tracked habits yet."
	}

	return "Current habits: " + string(data)
}
