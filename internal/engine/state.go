package engine

import (
	"github.com/abhisek/acompana/internal/qgraph"
)

// Status is the lifecycle phase of a questionnaire session.
type Status int

const (
	StatusLoading   Status = iota // Loading graph and session
	StatusAnswering               // Waiting for the current answer
	StatusSaving                  // Persisting an answer
	StatusCompleted               // Reached the end of the graph
	StatusError                   // Last operation failed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAnswering:
		return "answering"
	case StatusSaving:
		return "saving"
	case StatusCompleted:
		return "completed"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Outcome is the score recorded when a scored questionnaire completes.
type Outcome struct {
	Score int
	Label string

	// Detail carries the scorer's own result type.
	Detail any
}

// State is a point-in-time copy of the engine state. Callers may keep and
// read it freely; it is never mutated afterwards.
type State struct {
	Status    Status
	SessionID string

	// Current is nil while loading, after completion and after a fatal error.
	Current *qgraph.Question

	Answers       qgraph.Answers
	AnsweredCount int

	// Err is the last failure; nil unless Status is StatusError.
	Err error

	// Retryable is set when Retry can resume the failed operation.
	Retryable bool

	OwnName   string
	CaredName string

	Outcome *Outcome
}

// ErrMessage returns Err as text, or "".
func (s State) ErrMessage() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Progress summarizes how far the session has come. Mode says which of
// Linear or Graph is meaningful.
type Progress struct {
	Mode   ProgressMode
	Linear qgraph.LinearProgress
	Graph  qgraph.GraphProgress
}
