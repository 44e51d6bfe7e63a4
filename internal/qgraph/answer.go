package qgraph

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Selection is what a user submits for a question before validation.
type Selection struct {
	OptionIDs []string
	Text      string
}

// Choose is a convenience for a selection of options.
func Choose(optionIDs ...string) Selection {
	return Selection{OptionIDs: optionIDs}
}

// Reply is a convenience for a text selection.
func Reply(text string) Selection {
	return Selection{Text: text}
}

// NewAnswer validates sel against the question kind and returns the answer
// to record. It returns a *ValidationError when the shape does not fit.
func NewAnswer(q *Question, sel Selection) (Answer, error) {
	a := Answer{QuestionID: q.ID}

	invalid := func(format string, args ...any) (Answer, error) {
		return Answer{}, &ValidationError{QuestionID: q.ID, Reason: fmt.Sprintf(format, args...)}
	}

	switch q.Kind {
	case KindSingleChoice, KindMultipleChoice:
		if len(sel.OptionIDs) == 0 {
			return invalid("a selection is required")
		}
		if q.Kind == KindSingleChoice && len(sel.OptionIDs) > 1 {
			return invalid("exactly one option must be selected, got %d", len(sel.OptionIDs))
		}
		seen := make(map[string]bool, len(sel.OptionIDs))
		for _, id := range sel.OptionIDs {
			o := q.Option(id)
			if o == nil || o.Phantom {
				return invalid("unknown option %q", id)
			}
			if seen[id] {
				continue
			}
			seen[id] = true
			a.OptionIDs = append(a.OptionIDs, id)
		}

	case KindFreeText:
		text := strings.TrimSpace(sel.Text)
		if text == "" {
			return invalid("a text answer is required")
		}
		a.Text = text

	case KindNumeric:
		text := strings.TrimSpace(sel.Text)
		if _, ok := parseNumber(text); !ok {
			return invalid("not a finite number")
		}
		a.Text = text

	case KindBoolean:
		v, ok := parseBool(sel.Text)
		if !ok {
			return invalid("not a yes/no answer")
		}
		a.Text = strconv.FormatBool(v)

	default:
		return invalid("unsupported question kind %q", q.Kind)
	}

	return a, nil
}

// parseNumber accepts a decimal comma. NaN and infinities are rejected.
func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseBool accepts the usual Go spellings plus yes/no in English and Spanish.
func parseBool(s string) (bool, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "sí", "si", "s", "yes", "y":
		return true, true
	case "no", "n":
		return false, true
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, false
	}
	return v, true
}

// Numeric returns the answer's value for scored questionnaires: the score of
// the selected option for choice kinds, or the parsed text otherwise.
func (q *Question) Numeric(a Answer) (int, bool) {
	if q.Kind.IsChoice() {
		for _, o := range q.Options {
			if a.Selected(o.ID) && o.Score != nil {
				return *o.Score, true
			}
		}
		return 0, false
	}
	if q.Kind == KindNumeric {
		f, ok := parseNumber(a.Text)
		if !ok || f > math.MaxInt32 || f < math.MinInt32 {
			return 0, false
		}
		return int(f), true
	}
	return 0, false
}

// Display returns the human-readable content of an answer: the text for
// non-choice kinds, or the selected options' texts joined by ", ".
func (q *Question) Display(a Answer) string {
	if !q.Kind.IsChoice() {
		return a.Text
	}
	var parts []string
	for _, o := range q.Options {
		if a.Selected(o.ID) {
			parts = append(parts, o.Text)
		}
	}
	return strings.Join(parts, ", ")
}
