package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/abhisek/acompana/internal/qgraph"
	"github.com/abhisek/acompana/internal/store"
)

var errOffline = errors.New("network unreachable")

// fakeRepo is an in-memory store.Repository with failure injection.
type fakeRepo struct {
	mu        sync.Mutex
	graphs    map[string]store.GraphRows
	sessions  map[string]*store.SessionRecord
	responses map[string]map[string]store.ResponseRow
	saves     int

	failLoad     error
	failSave     error
	failComplete error

	// When gate is set, UpsertResponses signals entered and then waits for
	// gate to close.
	gate    chan struct{}
	entered chan struct{}
}

func newFakeRepo(rows ...store.GraphRows) *fakeRepo {
	r := &fakeRepo{
		graphs:    make(map[string]store.GraphRows),
		sessions:  make(map[string]*store.SessionRecord),
		responses: make(map[string]map[string]store.ResponseRow),
	}
	for _, g := range rows {
		r.graphs[g.Questionnaire.ID] = g
	}
	return r
}

func (r *fakeRepo) block() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gate = make(chan struct{})
	r.entered = make(chan struct{}, 1)
}

func (r *fakeRepo) release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	close(r.gate)
	r.gate = nil
}

func (r *fakeRepo) setFailSave(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failSave = err
}

func (r *fakeRepo) setFailComplete(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failComplete = err
}

func (r *fakeRepo) setFailLoad(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failLoad = err
}

func (r *fakeRepo) LoadGraph(_ context.Context, id string) (store.GraphRows, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failLoad != nil {
		return store.GraphRows{}, r.failLoad
	}
	g, ok := r.graphs[id]
	if !ok {
		return store.GraphRows{}, fmt.Errorf("questionnaire %q: %w", id, store.ErrNotFound)
	}
	return g, nil
}

func (r *fakeRepo) GetOrCreateSession(_ context.Context, userID, questionnaireID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.UserID == userID && s.QuestionnaireID == questionnaireID && !s.Completed() {
			return s.ID, nil
		}
	}
	id := fmt.Sprintf("session-%d", len(r.sessions)+1)
	r.sessions[id] = &store.SessionRecord{ID: id, UserID: userID, QuestionnaireID: questionnaireID, StartedAt: time.Now()}
	return id, nil
}

func (r *fakeRepo) UpsertResponses(ctx context.Context, sessionID string, rows []store.ResponseRow) error {
	r.mu.Lock()
	gate, entered := r.gate, r.entered
	r.mu.Unlock()
	if gate != nil {
		entered <- struct{}{}
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSave != nil {
		return r.failSave
	}
	if r.responses[sessionID] == nil {
		r.responses[sessionID] = make(map[string]store.ResponseRow)
	}
	for _, row := range rows {
		row.OptionIDs = slices.Clone(row.OptionIDs)
		r.responses[sessionID][row.QuestionID] = row
	}
	r.saves++
	return nil
}

func (r *fakeRepo) CompleteSession(_ context.Context, sessionID string, score *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failComplete != nil {
		return r.failComplete
	}
	s, ok := r.sessions[sessionID]
	if !ok {
		return store.ErrNotFound
	}
	now := time.Now()
	s.CompletedAt = &now
	s.Score = score
	return nil
}

func (r *fakeRepo) LoadResponses(_ context.Context, sessionID string) ([]store.ResponseRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []store.ResponseRow
	for _, row := range r.responses[sessionID] {
		out = append(out, row)
	}
	return out, nil
}

func (r *fakeRepo) stored(sessionID, questionID string) (store.ResponseRow, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.responses[sessionID][questionID]
	return row, ok
}

func (r *fakeRepo) session(id string) store.SessionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.sessions[id]
}

// graphRows builds questionnaire rows for tests.
type graphRows struct {
	rows store.GraphRows
}

func newGraph(id string) *graphRows {
	return &graphRows{rows: store.GraphRows{Questionnaire: store.QuestionnaireRow{ID: id, Title: id}}}
}

func (b *graphRows) scored() *graphRows {
	b.rows.Questionnaire.Scored = true
	return b
}

func (b *graphRows) question(id string, kind qgraph.Kind, next, rule string) *graphRows {
	b.rows.Questions = append(b.rows.Questions, store.QuestionRow{
		ID:              id,
		QuestionnaireID: b.rows.Questionnaire.ID,
		Text:            "¿" + id + ", {{Y}}?",
		Kind:            string(kind),
		IsEntry:         len(b.rows.Questions) == 0,
		OrderIndex:      len(b.rows.Questions),
		NextQuestionID:  next,
		VisibilityRule:  rule,
	})
	return b
}

func (b *graphRows) option(questionID, id, text, next string, score *int) *graphRows {
	b.rows.Options = append(b.rows.Options, store.OptionRow{
		ID:             id,
		QuestionID:     questionID,
		Text:           text,
		Score:          score,
		NextQuestionID: next,
		OrderIndex:     len(b.rows.Options),
	})
	return b
}

func intPtr(v int) *int { return &v }

// linearSurvey is five single-choice questions scored 0..2, in a row.
func linearSurvey() store.GraphRows {
	b := newGraph("linear").scored()
	ids := []string{"q1", "q2", "q3", "q4", "q5"}
	for i, id := range ids {
		next := ""
		if i+1 < len(ids) {
			next = ids[i+1]
		}
		b.question(id, qgraph.KindSingleChoice, "", "")
		for v := range 3 {
			b.option(id, fmt.Sprintf("%s-%d", id, v), fmt.Sprintf("valor %d", v), next, intPtr(v))
		}
	}
	return b.rows
}

// onboarding captures two names, then branches on whether the caregiver
// lives with the cared-for person.
//
//	name -> cared -> cohabit (yes -> hours, no -> visits)
//	hours gated on cohabit=yes -> mood
//	visits -> mood
//	mood (end)
func onboarding() store.GraphRows {
	return newGraph("onboarding").
		question("name", qgraph.KindFreeText, "cared", "").
		question("cared", qgraph.KindFreeText, "cohabit", "").
		question("cohabit", qgraph.KindSingleChoice, "", "").
		option("cohabit", "yes", "Sí", "hours", nil).
		option("cohabit", "no", "No", "visits", nil).
		question("hours", qgraph.KindNumeric, "mood",
			`{"operator":"all","conditions":[{"question_id":"cohabit","option_ids":["yes"]}]}`).
		question("visits", qgraph.KindSingleChoice, "", "").
		option("visits", "daily", "A diario", "mood", nil).
		option("visits", "weekly", "Semanal", "mood", nil).
		question("mood", qgraph.KindSingleChoice, "", "").
		option("mood", "good", "Bien", "", nil).
		option("mood", "bad", "Mal", "", nil).
		rows
}

// sumScorer totals option scores.
type sumScorer struct{}

func (sumScorer) Score(g *qgraph.Graph, answers qgraph.Answers) (Outcome, error) {
	total := 0
	for id, a := range answers {
		q, _ := g.Node(id)
		v, _ := q.Numeric(a)
		total += v
	}
	return Outcome{Score: total, Label: "sum"}, nil
}

type failingScorer struct{}

func (failingScorer) Score(*qgraph.Graph, qgraph.Answers) (Outcome, error) {
	return Outcome{}, errors.New("incomplete")
}

// recordingSink records names it receives.
type recordingSink struct {
	mu    sync.Mutex
	calls [][2]string
}

func (s *recordingSink) SaveNames(_ context.Context, own, cared string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, [2]string{own, cared})
	return nil
}
