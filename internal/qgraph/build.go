package qgraph

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/abhisek/acompana/internal/store"
)

// phantomSuffix is appended to a question ID to form its phantom option ID.
const phantomSuffix = "#next"

// Graph is an immutable questionnaire graph keyed by question ID.
type Graph struct {
	id       string
	title    string
	scored   bool
	nodes    map[string]*Question
	ordered  []*Question
	position map[string]int
	entry    *Question
}

// Build turns flat rows into a graph. It is a pure transform; every integrity
// problem found is reported together in a *DataIntegrityError.
func Build(rows store.GraphRows) (*Graph, error) {
	g := &Graph{
		id:       rows.Questionnaire.ID,
		title:    rows.Questionnaire.Title,
		scored:   rows.Questionnaire.Scored,
		nodes:    make(map[string]*Question, len(rows.Questions)),
		position: make(map[string]int, len(rows.Questions)),
	}
	var problems []string

	for _, r := range rows.Questions {
		if r.ID == "" {
			problems = append(problems, "question with empty ID")
			continue
		}
		if _, dup := g.nodes[r.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate question ID: %q", r.ID))
			continue
		}
		if g.id != "" && r.QuestionnaireID != "" && r.QuestionnaireID != g.id {
			problems = append(problems, fmt.Sprintf("question %q belongs to questionnaire %q", r.ID, r.QuestionnaireID))
		}
		kind := Kind(r.Kind)
		if !kind.Valid() {
			problems = append(problems, fmt.Sprintf("question %q has unknown kind %q", r.ID, r.Kind))
		}
		q := &Question{
			ID:              r.ID,
			QuestionnaireID: cmp.Or(r.QuestionnaireID, g.id),
			Text:            r.Text,
			Kind:            kind,
			Entry:           r.IsEntry,
			Order:           r.OrderIndex,
			Next:            r.NextQuestionID,
			Visibility:      ParseRule(r.VisibilityRule),
		}
		g.nodes[q.ID] = q
		g.ordered = append(g.ordered, q)
	}

	// Option IDs are keys in storage, so they must be unique across the
	// whole questionnaire, not just within one question.
	optionOwner := make(map[string]string, len(rows.Options))
	for _, r := range rows.Options {
		owner, ok := g.nodes[r.QuestionID]
		if !ok {
			problems = append(problems, fmt.Sprintf("option %q belongs to unknown question %q", r.ID, r.QuestionID))
			continue
		}
		if prev, dup := optionOwner[r.ID]; dup {
			if prev == r.QuestionID {
				problems = append(problems, fmt.Sprintf("duplicate option ID %q on question %q", r.ID, r.QuestionID))
			} else {
				problems = append(problems, fmt.Sprintf("option ID %q used by questions %q and %q", r.ID, prev, r.QuestionID))
			}
			continue
		}
		optionOwner[r.ID] = r.QuestionID
		owner.Options = append(owner.Options, &Option{
			ID:         r.ID,
			QuestionID: r.QuestionID,
			Text:       r.Text,
			Score:      r.Score,
			Next:       r.NextQuestionID,
			Order:      r.OrderIndex,
		})
	}

	slices.SortStableFunc(g.ordered, func(a, b *Question) int {
		return cmp.Or(cmp.Compare(a.Order, b.Order), strings.Compare(a.ID, b.ID))
	})

	var entries []string
	for i, q := range g.ordered {
		g.position[q.ID] = i
		if q.Entry {
			entries = append(entries, q.ID)
			g.entry = q
		}

		slices.SortStableFunc(q.Options, func(a, b *Option) int {
			return cmp.Compare(a.Order, b.Order)
		})

		if len(q.Options) == 0 {
			if q.Kind.IsChoice() {
				problems = append(problems, fmt.Sprintf("choice question %q has no options", q.ID))
			} else {
				q.Options = []*Option{{
					ID:         q.ID + phantomSuffix,
					QuestionID: q.ID,
					Next:       q.Next,
					Phantom:    true,
				}}
			}
		}

		if q.Next != "" && g.nodes[q.Next] == nil {
			problems = append(problems, fmt.Sprintf("question %q references nonexistent successor %q", q.ID, q.Next))
		}
		for _, o := range q.Options {
			if o.Phantom {
				continue
			}
			if o.Next != "" && g.nodes[o.Next] == nil {
				problems = append(problems, fmt.Sprintf("option %q of question %q references nonexistent question %q", o.ID, q.ID, o.Next))
			}
		}
	}

	switch len(entries) {
	case 0:
		problems = append(problems, "no entry question found (exactly one question must be marked as entry)")
	case 1:
	default:
		problems = append(problems, fmt.Sprintf("multiple entry questions: %s", strings.Join(entries, ", ")))
	}

	if len(problems) > 0 {
		return nil, &DataIntegrityError{QuestionnaireID: g.id, Problems: problems}
	}
	return g, nil
}

// ID returns the questionnaire ID.
func (g *Graph) ID() string { return g.id }

// Title returns the questionnaire title.
func (g *Graph) Title() string { return g.title }

// Scored reports whether completion records a numeric score.
func (g *Graph) Scored() bool { return g.scored }

// Entry returns the entry question.
func (g *Graph) Entry() *Question { return g.entry }

// Len returns the number of questions.
func (g *Graph) Len() int { return len(g.ordered) }

// Node returns the question with the given ID.
func (g *Graph) Node(id string) (*Question, bool) {
	q, ok := g.nodes[id]
	return q, ok
}

// Ordered returns all questions sorted by order index.
func (g *Graph) Ordered() []*Question {
	return slices.Clone(g.ordered)
}

// Position returns the 0-based order position of a question, or -1.
func (g *Graph) Position(id string) int {
	if p, ok := g.position[id]; ok {
		return p
	}
	return -1
}

// At returns the question at the given order position, or nil.
func (g *Graph) At(pos int) *Question {
	if pos < 0 || pos >= len(g.ordered) {
		return nil
	}
	return g.ordered[pos]
}

// IsLinear reports whether no question branches: every question's options
// all lead to the same target.
func (g *Graph) IsLinear() bool {
	for _, q := range g.ordered {
		if len(q.Options) < 2 {
			continue
		}
		for _, o := range q.Options[1:] {
			if o.Next != q.Options[0].Next {
				return false
			}
		}
	}
	return true
}
