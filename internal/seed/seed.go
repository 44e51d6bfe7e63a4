// Package seed holds the built-in questionnaires.
package seed

import (
	"context"
	"fmt"

	"github.com/abhisek/acompana/internal/store"
)

// Built-in questionnaire IDs.
const (
	OnboardingID = "onboarding"
	WHO5ID       = "who5"
)

// Writer saves questionnaire content.
type Writer interface {
	SaveQuestionnaire(ctx context.Context, rows store.GraphRows) error
}

// All returns every built-in questionnaire.
func All() []store.GraphRows {
	return []store.GraphRows{Onboarding(), WHO5()}
}

// Get returns the built-in questionnaire with the given ID.
func Get(id string) (store.GraphRows, bool) {
	for _, rows := range All() {
		if rows.Questionnaire.ID == id {
			return rows, true
		}
	}
	return store.GraphRows{}, false
}

// Install writes every built-in questionnaire, replacing earlier copies.
func Install(ctx context.Context, w Writer) error {
	for _, rows := range All() {
		if err := w.SaveQuestionnaire(ctx, rows); err != nil {
			return fmt.Errorf("install %s: %w", rows.Questionnaire.ID, err)
		}
	}
	return nil
}

// builder assembles rows with order indices assigned in declaration order.
type builder struct {
	rows store.GraphRows
}

func newBuilder(id, title string, scored bool) *builder {
	return &builder{rows: store.GraphRows{
		Questionnaire: store.QuestionnaireRow{ID: id, Title: title, Scored: scored},
	}}
}

func (b *builder) question(id, kind, text, next, rule string) *builder {
	b.rows.Questions = append(b.rows.Questions, store.QuestionRow{
		ID:              id,
		QuestionnaireID: b.rows.Questionnaire.ID,
		Text:            text,
		Kind:            kind,
		IsEntry:         len(b.rows.Questions) == 0,
		OrderIndex:      len(b.rows.Questions),
		VisibilityRule:  rule,
		NextQuestionID:  next,
	})
	return b
}

func (b *builder) option(questionID, id, text, next string, score *int) *builder {
	n := 0
	for _, o := range b.rows.Options {
		if o.QuestionID == questionID {
			n++
		}
	}
	b.rows.Options = append(b.rows.Options, store.OptionRow{
		ID:             id,
		QuestionID:     questionID,
		Text:           text,
		Score:          score,
		NextQuestionID: next,
		OrderIndex:     n,
	})
	return b
}
