package engine

import (
	"context"

	"github.com/abhisek/acompana/internal/qgraph"
)

// Field names an identity value captured from an answer.
type Field int

const (
	FieldOwnName   Field = iota // the caregiver's own name
	FieldCaredName              // the name of the person they care for
)

func (f Field) String() string {
	switch f {
	case FieldOwnName:
		return "own_name"
	case FieldCaredName:
		return "cared_name"
	}
	return "unknown"
}

// Capture maps a question position (0-based, in question order) to the
// identity field its answer fills.
type Capture struct {
	Position int
	Field    Field
}

// DefaultCaptures captures the first answer as the caregiver's name and the
// second as the cared-for person's name.
func DefaultCaptures() []Capture {
	return []Capture{
		{Position: 0, Field: FieldOwnName},
		{Position: 1, Field: FieldCaredName},
	}
}

// ProgressMode selects the progress strategy.
type ProgressMode string

const (
	ProgressAuto   ProgressMode = "auto"
	ProgressLinear ProgressMode = "linear"
	ProgressGraph  ProgressMode = "graph"
)

// Config describes one questionnaire session.
type Config struct {
	QuestionnaireID string
	UserID          string

	// Captures defaults to DefaultCaptures when nil. An empty, non-nil
	// slice disables capturing.
	Captures []Capture

	// MaxSkips bounds hidden questions skipped per step; zero means the
	// graph size.
	MaxSkips int

	// Progress defaults to ProgressAuto: linear for non-branching graphs.
	Progress ProgressMode
}

// Scorer computes the outcome of a scored questionnaire on completion.
type Scorer interface {
	Score(g *qgraph.Graph, answers qgraph.Answers) (Outcome, error)
}

// NamesSink receives captured names, for example to keep them as guest
// progress. Errors are logged and otherwise ignored.
type NamesSink interface {
	SaveNames(ctx context.Context, ownName, caredName string) error
}
