package pgstore

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/acompana/internal/store"
)

var (
	dbOnce  sync.Once
	shared  *Store
	openErr error
)

// testStore connects once per package run. Tests isolate themselves with
// random questionnaire and user IDs.
func testStore(tb testing.TB) *Store {
	tb.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		tb.Skip("set TEST_POSTGRES_DSN to run postgres integration tests")
	}
	dbOnce.Do(func() {
		shared, openErr = Open(dsn)
	})
	if openErr != nil {
		tb.Fatalf("open test db: %v", openErr)
	}
	return shared
}

func sampleRows(prefix string) store.GraphRows {
	score := 3
	return store.GraphRows{
		Questionnaire: store.QuestionnaireRow{ID: prefix, Title: "Sample", Scored: true},
		Questions: []store.QuestionRow{
			{ID: prefix + "-q1", QuestionnaireID: prefix, Text: "¿Cómo te llamas?", Kind: "free_text", IsEntry: true, OrderIndex: 0, NextQuestionID: prefix + "-q2"},
			{ID: prefix + "-q2", QuestionnaireID: prefix, Text: "¿Qué tal?", Kind: "single_choice", OrderIndex: 1, VisibilityRule: `{"operator": "all"`},
		},
		Options: []store.OptionRow{
			{ID: prefix + "-o2", QuestionID: prefix + "-q2", Text: "Mal", OrderIndex: 1},
			{ID: prefix + "-o1", QuestionID: prefix + "-q2", Text: "Bien", Score: &score, OrderIndex: 0},
		},
	}
}

func TestSaveAndLoadGraph(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	id := uuid.NewString()

	require.NoError(t, s.SaveQuestionnaire(ctx, sampleRows(id)))
	rows, err := s.LoadGraph(ctx, id)
	require.NoError(t, err)

	assert.True(t, rows.Questionnaire.Scored)
	require.Len(t, rows.Questions, 2)
	assert.Equal(t, id+"-q2", rows.Questions[0].NextQuestionID)
	assert.Equal(t, `{"operator": "all"`, rows.Questions[1].VisibilityRule, "malformed rules are kept verbatim")
	require.Len(t, rows.Options, 2)
	assert.Equal(t, id+"-o1", rows.Options[0].ID)
	require.NotNil(t, rows.Options[0].Score)
	assert.Equal(t, 3, *rows.Options[0].Score)

	// Saving again replaces rather than duplicates.
	require.NoError(t, s.SaveQuestionnaire(ctx, sampleRows(id)))
	rows, err = s.LoadGraph(ctx, id)
	require.NoError(t, err)
	assert.Len(t, rows.Options, 2)
}

func TestLoadGraph_NotFound(t *testing.T) {
	s := testStore(t)
	_, err := s.LoadGraph(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSessionLifecycle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	user, qn := uuid.NewString(), uuid.NewString()

	sid, err := s.GetOrCreateSession(ctx, user, qn)
	require.NoError(t, err)
	again, err := s.GetOrCreateSession(ctx, user, qn)
	require.NoError(t, err)
	assert.Equal(t, sid, again, "open session is reused")

	require.NoError(t, s.UpsertResponses(ctx, sid, []store.ResponseRow{
		{QuestionID: "q1", Text: "Ana"},
		{QuestionID: "q2", OptionIDs: []string{"a"}},
	}))
	require.NoError(t, s.UpsertResponses(ctx, sid, []store.ResponseRow{
		{QuestionID: "q2", OptionIDs: []string{"b", "c"}},
	}))

	rows, err := s.LoadResponses(ctx, sid)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Ana", rows[0].Text)
	assert.Nil(t, rows[0].OptionIDs)
	assert.Equal(t, []string{"b", "c"}, rows[1].OptionIDs)

	score := 48
	require.NoError(t, s.CompleteSession(ctx, sid, &score))

	sessions, err := s.ListSessions(ctx, store.SessionFilter{UserID: user, CompletedOnly: true})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.True(t, sessions[0].Completed())
	assert.Equal(t, 48, *sessions[0].Score)

	next, err := s.GetOrCreateSession(ctx, user, qn)
	require.NoError(t, err)
	assert.NotEqual(t, sid, next, "completed sessions are not reused")
}

func TestCompleteSession_Unknown(t *testing.T) {
	s := testStore(t)
	err := s.CompleteSession(context.Background(), uuid.NewString(), nil)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
