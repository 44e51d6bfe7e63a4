package qgraph

import (
	"slices"
	"strings"
)

// Kind is the answer shape a question expects.
type Kind string

const (
	KindSingleChoice   Kind = "single_choice"
	KindMultipleChoice Kind = "multiple_choice"
	KindFreeText       Kind = "free_text"
	KindNumeric        Kind = "numeric"
	KindBoolean        Kind = "boolean"
)

// AllKinds returns every supported question kind.
func AllKinds() []Kind {
	return []Kind{
		KindSingleChoice,
		KindMultipleChoice,
		KindFreeText,
		KindNumeric,
		KindBoolean,
	}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return slices.Contains(AllKinds(), k)
}

// IsChoice reports whether answers to this kind select options.
func (k Kind) IsChoice() bool {
	return k == KindSingleChoice || k == KindMultipleChoice
}

// Option is an answer choice and the edge it leads along.
type Option struct {
	ID         string
	QuestionID string
	Text       string
	Score      *int

	// Next is the ID of the question that follows when this option is
	// chosen. Empty means the branch ends here.
	Next string

	// Phantom marks the synthesized single option of a non-choice question.
	Phantom bool

	Order int
}

// IsTerminal reports whether choosing o ends the questionnaire.
func (o *Option) IsTerminal() bool {
	return o.Next == ""
}

// Question is a node of the questionnaire graph. Nodes are immutable once built.
type Question struct {
	ID              string
	QuestionnaireID string
	Text            string
	Kind            Kind
	Entry           bool
	Order           int

	// Next is the designated successor used for the phantom option of
	// non-choice questions.
	Next string

	// Options are sorted by order index. Non-choice questions without
	// authored options carry exactly one phantom option.
	Options []*Option

	// Visibility is nil when the question is always shown.
	Visibility *Rule
}

// Option returns the option with the given ID, or nil.
func (q *Question) Option(id string) *Option {
	for _, o := range q.Options {
		if o.ID == id {
			return o
		}
	}
	return nil
}

// FirstOption returns the question's default forward edge, or nil.
func (q *Question) FirstOption() *Option {
	if len(q.Options) == 0 {
		return nil
	}
	return q.Options[0]
}

// Answer is the committed response to one question. Choice kinds use
// OptionIDs; free-text, numeric and boolean kinds use Text.
type Answer struct {
	QuestionID string
	OptionIDs  []string
	Text       string
}

// Selected reports whether the answer picked the given option.
func (a Answer) Selected(optionID string) bool {
	return slices.Contains(a.OptionIDs, optionID)
}

// IsEmpty reports whether the answer carries no payload.
func (a Answer) IsEmpty() bool {
	return len(a.OptionIDs) == 0 && strings.TrimSpace(a.Text) == ""
}

// Answers maps question IDs to their current answer.
type Answers map[string]Answer

// Clone returns a deep copy of the answer set.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		v.OptionIDs = slices.Clone(v.OptionIDs)
		out[k] = v
	}
	return out
}

// Count returns the number of non-empty answers.
func (a Answers) Count() int {
	n := 0
	for _, v := range a {
		if !v.IsEmpty() {
			n++
		}
	}
	return n
}
