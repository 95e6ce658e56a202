// Package battle runs the category head-to-head tests: it assembles the
// contenders for each category battle and records session outcomes.
package battle

import (
	"context"
	"errors"
	"fmt"

	"scentlab/internal/core"
	"scentlab/internal/logger"
	"scentlab/internal/taxonomy"
)

var (
	// ErrUnknownCategory is returned for a category outside the fixed set.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrSessionNotFound is returned when a session ID resolves to nothing.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionCompleted is returned when results are added to a closed session.
	ErrSessionCompleted = errors.New("session already completed")
	// ErrTooManySelections is returned when a result exceeds the category's
	// selection budget.
	ErrTooManySelections = errors.New("too many selections for category")
	// ErrNoSelections is returned for a result with no winners at all.
	ErrNoSelections = errors.New("at least one selection is required")
)

// Repository is the persistence surface the battle service needs.
type Repository interface {
	FindByCategory(ctx context.Context, category core.CategoryTag) ([]core.Fragrance, error)
	FindFragrancesByIDs(ctx context.Context, ids []string) ([]core.Fragrance, error)
	CreateSession(ctx context.Context, session *core.TestSession) error
	GetSession(ctx context.Context, id string) (*core.TestSession, error)
	ListSessions(ctx context.Context) ([]core.TestSession, error)
	CompleteSession(ctx context.Context, id string) error
	AddResult(ctx context.Context, r *core.TestResult) error
	SessionResults(ctx context.Context, sessionID string) ([]core.TestResult, error)
}

// Service coordinates battles and test sessions.
type Service struct {
	repo Repository
}

// NewService creates the battle service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Battle is one category test: its configuration plus the contenders the
// collection currently holds for it.
type Battle struct {
	Config     taxonomy.CategoryInfo `json:"config"`
	Contenders []core.Fragrance      `json:"contenders"`
}

// BattleFor assembles the battle for one category.
func (s *Service) BattleFor(ctx context.Context, category core.CategoryTag) (*Battle, error) {
	info, ok := taxonomy.Categories()[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	contenders, err := s.repo.FindByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to load contenders: %w", err)
	}

	return &Battle{Config: info, Contenders: contenders}, nil
}

// AllConfigs returns every battle configuration in display order.
func (s *Service) AllConfigs() []taxonomy.CategoryInfo {
	configs := taxonomy.Categories()
	out := make([]taxonomy.CategoryInfo, 0, len(configs))
	for _, tag := range core.AllCategories {
		if info, ok := configs[tag]; ok {
			out = append(out, info)
		}
	}
	return out
}

// StartSession opens a new test session.
func (s *Service) StartSession(ctx context.Context, name string, blindTest bool) (*core.TestSession, error) {
	session := &core.TestSession{Name: name, BlindTest: blindTest}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	logger.Info("test session started", "session", session.ID, "blind", blindTest)
	return session, nil
}

// RecordResult validates and stores the winners of one category battle.
func (s *Service) RecordResult(ctx context.Context, sessionID string, category core.CategoryTag, selectedIDs []string) (*core.TestResult, error) {
	info, ok := taxonomy.Categories()[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	if len(selectedIDs) == 0 {
		return nil, ErrNoSelections
	}
	if len(selectedIDs) > info.MaxSelections {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManySelections, len(selectedIDs), info.MaxSelections)
	}

	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.Completed() {
		return nil, ErrSessionCompleted
	}

	// Selections must reference stored fragrances.
	found, err := s.repo.FindFragrancesByIDs(ctx, selectedIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to verify selections: %w", err)
	}
	if len(found) != len(selectedIDs) {
		return nil, fmt.Errorf("unknown fragrance among selections")
	}

	result := &core.TestResult{
		SessionID:     sessionID,
		Category:      category,
		SelectedIDs:   selectedIDs,
		MaxSelections: info.MaxSelections,
	}
	if err := s.repo.AddResult(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to record result: %w", err)
	}

	logger.Info("battle result recorded",
		"session", sessionID, "category", string(category), "selections", len(selectedIDs))
	return result, nil
}

// FinishSession closes out a session.
func (s *Service) FinishSession(ctx context.Context, sessionID string) error {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return ErrSessionNotFound
	}
	if session.Completed() {
		return ErrSessionCompleted
	}
	if err := s.repo.CompleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to complete session: %w", err)
	}
	return nil
}

// SessionSummary is a session with its recorded results.
type SessionSummary struct {
	Session core.TestSession  `json:"session"`
	Results []core.TestResult `json:"results"`
}

// Summary returns a session and everything recorded in it.
func (s *Service) Summary(ctx context.Context, sessionID string) (*SessionSummary, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	results, err := s.repo.SessionResults(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}

	return &SessionSummary{Session: *session, Results: results}, nil
}

// Sessions lists all sessions, newest first.
func (s *Service) Sessions(ctx context.Context) ([]core.TestSession, error) {
	return s.repo.ListSessions(ctx)
}
