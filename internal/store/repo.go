package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a questionnaire or session does not exist.
var ErrNotFound = errors.New("not found")

// QuestionnaireRow describes a questionnaire as stored.
type QuestionnaireRow struct {
	ID    string
	Title string
	// Scored marks questionnaires whose completion records a numeric score.
	Scored bool
}

// QuestionRow is a question as delivered by the backing store.
type QuestionRow struct {
	ID              string
	QuestionnaireID string
	Text            string
	Kind            string
	IsEntry         bool
	OrderIndex      int
	// VisibilityRule is the raw rule JSON, empty when the question is always shown.
	VisibilityRule string
	// NextQuestionID is the designated successor for questions without
	// explicit options. Empty means end of graph.
	NextQuestionID string
}

// OptionRow is an answer option as delivered by the backing store.
type OptionRow struct {
	ID             string
	QuestionID     string
	Text           string
	Score          *int
	NextQuestionID string // empty = end of graph for this branch
	OrderIndex     int
}

// GraphRows is the flat input for building a questionnaire graph.
type GraphRows struct {
	Questionnaire QuestionnaireRow
	Questions     []QuestionRow
	Options       []OptionRow
}

// ResponseRow is one persisted answer, unique per (SessionID, QuestionID).
type ResponseRow struct {
	SessionID  string
	QuestionID string
	OptionIDs  []string
	Text       string
	UpdatedAt  time.Time
}

// SessionRecord is a user's attempt at a questionnaire.
type SessionRecord struct {
	ID              string
	UserID          string
	QuestionnaireID string
	StartedAt       time.Time
	CompletedAt     *time.Time
	Score           *int
}

// Completed reports whether the session has been marked complete.
func (s SessionRecord) Completed() bool {
	return s.CompletedAt != nil
}

// Repository is the persistence contract consumed by the questionnaire engine.
type Repository interface {
	// LoadGraph returns the questions and options of a questionnaire.
	LoadGraph(ctx context.Context, questionnaireID string) (GraphRows, error)

	// GetOrCreateSession returns the unfinished session for the user and
	// questionnaire, creating one if none exists.
	GetOrCreateSession(ctx context.Context, userID, questionnaireID string) (string, error)

	// UpsertResponses writes responses keyed by (session, question).
	// Re-submitting a question overwrites its row.
	UpsertResponses(ctx context.Context, sessionID string, rows []ResponseRow) error

	// CompleteSession marks the session finished, recording score when non-nil.
	CompleteSession(ctx context.Context, sessionID string, score *int) error

	// LoadResponses returns every persisted response of a session.
	LoadResponses(ctx context.Context, sessionID string) ([]ResponseRow, error)
}

// SessionFilter narrows ListSessions results.
type SessionFilter struct {
	UserID          string
	QuestionnaireID string
	CompletedOnly   bool
	Limit           int // 0 = unlimited
}

// AdminRepository adds authoring and history operations used by the CLI.
type AdminRepository interface {
	Repository

	// SaveQuestionnaire replaces a questionnaire and all of its questions and options.
	SaveQuestionnaire(ctx context.Context, rows GraphRows) error

	// ListQuestionnaires returns every stored questionnaire.
	ListQuestionnaires(ctx context.Context) ([]QuestionnaireRow, error)

	// ListSessions returns sessions newest first.
	ListSessions(ctx context.Context, f SessionFilter) ([]SessionRecord, error)
}
