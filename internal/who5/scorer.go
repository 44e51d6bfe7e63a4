package who5

import (
	"errors"
	"fmt"

	"github.com/abhisek/acompana/internal/engine"
	"github.com/abhisek/acompana/internal/qgraph"
	"github.com/abhisek/acompana/internal/store"
)

// ErrIncomplete is returned when not every item has a numeric answer.
var ErrIncomplete = errors.New("who5: not all items answered")

// Scorer scores a completed WHO-5 session for the engine.
type Scorer struct {
	// Table overrides Categories when set.
	Table []Category
}

var _ engine.Scorer = Scorer{}

// Score implements engine.Scorer. Every question of the graph must carry a
// numeric value.
func (s Scorer) Score(g *qgraph.Graph, answers qgraph.Answers) (engine.Outcome, error) {
	values := Values(g, answers)
	if !AllAnswered(values, g.Len()) {
		return engine.Outcome{}, fmt.Errorf("%w: %d of %d", ErrIncomplete, len(values), g.Len())
	}
	table := s.Table
	if table == nil {
		table = Categories()
	}
	r := ScoreWith(values, table)
	return engine.Outcome{Score: r.Final, Label: r.Category.Label, Detail: r}, nil
}

// Values extracts the numeric item values from answers, keyed by question ID.
// Answers without a numeric value are left out.
func Values(g *qgraph.Graph, answers qgraph.Answers) map[string]int {
	values := make(map[string]int, len(answers))
	for _, q := range g.Ordered() {
		a, ok := answers[q.ID]
		if !ok {
			continue
		}
		if v, ok := q.Numeric(a); ok {
			values[q.ID] = v
		}
	}
	return values
}

// Rescore recomputes a result from persisted response rows, without a
// running session.
func Rescore(g *qgraph.Graph, rows []store.ResponseRow) (Result, bool) {
	answers := make(qgraph.Answers, len(rows))
	for _, row := range rows {
		answers[row.QuestionID] = qgraph.Answer{QuestionID: row.QuestionID, OptionIDs: row.OptionIDs, Text: row.Text}
	}
	values := Values(g, answers)
	return Score(values), AllAnswered(values, g.Len())
}
