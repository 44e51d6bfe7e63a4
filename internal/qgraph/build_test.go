package qgraph

import (
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/acompana/internal/store"
)

func intPtr(v int) *int { return &v }

// rowsBuilder assembles GraphRows for tests.
type rowsBuilder struct {
	rows store.GraphRows
}

func newRows(id string) *rowsBuilder {
	return &rowsBuilder{rows: store.GraphRows{Questionnaire: store.QuestionnaireRow{ID: id, Title: id}}}
}

func (b *rowsBuilder) question(id string, kind Kind, next string) *rowsBuilder {
	b.rows.Questions = append(b.rows.Questions, store.QuestionRow{
		ID:              id,
		QuestionnaireID: b.rows.Questionnaire.ID,
		Text:            "text of " + id,
		Kind:            string(kind),
		IsEntry:         len(b.rows.Questions) == 0,
		OrderIndex:      len(b.rows.Questions),
		NextQuestionID:  next,
	})
	return b
}

func (b *rowsBuilder) rule(questionID, raw string) *rowsBuilder {
	for i := range b.rows.Questions {
		if b.rows.Questions[i].ID == questionID {
			b.rows.Questions[i].VisibilityRule = raw
		}
	}
	return b
}

func (b *rowsBuilder) option(questionID, id, next string) *rowsBuilder {
	n := 0
	for _, o := range b.rows.Options {
		if o.QuestionID == questionID {
			n++
		}
	}
	b.rows.Options = append(b.rows.Options, store.OptionRow{
		ID:             id,
		QuestionID:     questionID,
		Text:           "option " + id,
		NextQuestionID: next,
		OrderIndex:     n,
	})
	return b
}

func (b *rowsBuilder) build(t *testing.T) *Graph {
	t.Helper()
	g, err := Build(b.rows)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return g
}

func linearRows(n int) *rowsBuilder {
	b := newRows("linear")
	ids := []string{"q1", "q2", "q3", "q4", "q5", "q6", "q7", "q8"}[:n]
	for i, id := range ids {
		next := ""
		if i+1 < len(ids) {
			next = ids[i+1]
		}
		b.question(id, KindSingleChoice, "")
		b.option(id, id+"-a", next)
		b.option(id, id+"-b", next)
	}
	return b
}

func requireIntegrityError(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatal("expected DataIntegrityError, got nil")
	}
	var die *DataIntegrityError
	if !errors.As(err, &die) {
		t.Fatalf("expected *DataIntegrityError, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), want) {
		t.Errorf("error should mention %q, got: %v", want, err)
	}
}

func TestBuild_ValidGraph(t *testing.T) {
	g := linearRows(5).build(t)

	if g.Len() != 5 {
		t.Errorf("Len = %d, want 5", g.Len())
	}
	if g.Entry() == nil || g.Entry().ID != "q1" {
		t.Fatalf("Entry = %v, want q1", g.Entry())
	}
	q3, ok := g.Node("q3")
	if !ok {
		t.Fatal("q3 not found")
	}
	if len(q3.Options) != 2 || q3.Options[0].ID != "q3-a" {
		t.Errorf("q3 options = %+v", q3.Options)
	}
	if g.Position("q3") != 2 {
		t.Errorf("Position(q3) = %d, want 2", g.Position("q3"))
	}
	if g.Position("missing") != -1 {
		t.Errorf("Position(missing) = %d, want -1", g.Position("missing"))
	}
	if !g.IsLinear() {
		t.Error("expected linear graph")
	}
}

func TestBuild_SortsByOrderIndex(t *testing.T) {
	b := newRows("sorted")
	b.rows.Questions = []store.QuestionRow{
		{ID: "b", Kind: string(KindFreeText), OrderIndex: 2},
		{ID: "a", Kind: string(KindFreeText), OrderIndex: 1, IsEntry: true, NextQuestionID: "b"},
	}
	b.rows.Options = []store.OptionRow{}
	g := b.build(t)

	ordered := g.Ordered()
	if ordered[0].ID != "a" || ordered[1].ID != "b" {
		t.Errorf("ordered = %s, %s; want a, b", ordered[0].ID, ordered[1].ID)
	}
}

func TestBuild_SortsOptions(t *testing.T) {
	b := newRows("opts").question("q1", KindSingleChoice, "")
	b.rows.Options = []store.OptionRow{
		{ID: "late", QuestionID: "q1", OrderIndex: 5},
		{ID: "early", QuestionID: "q1", OrderIndex: 1},
	}
	g := b.build(t)
	q, _ := g.Node("q1")
	if q.Options[0].ID != "early" {
		t.Errorf("first option = %q, want early", q.Options[0].ID)
	}
}

func TestBuild_SynthesizesPhantomOption(t *testing.T) {
	g := newRows("p").
		question("name", KindFreeText, "age").
		question("age", KindNumeric, "").
		build(t)

	name, _ := g.Node("name")
	if len(name.Options) != 1 {
		t.Fatalf("options = %d, want 1", len(name.Options))
	}
	ph := name.Options[0]
	if !ph.Phantom {
		t.Error("expected phantom option")
	}
	if ph.Next != "age" {
		t.Errorf("phantom next = %q, want age", ph.Next)
	}

	age, _ := g.Node("age")
	if len(age.Options) != 1 || !age.Options[0].IsTerminal() {
		t.Errorf("age should have one terminal phantom option, got %+v", age.Options)
	}
}

func TestBuild_DetectsDanglingOptionTarget(t *testing.T) {
	b := newRows("d").question("q1", KindSingleChoice, "").option("q1", "a", "nonexistent")
	_, err := Build(b.rows)
	requireIntegrityError(t, err, "nonexistent")
}

func TestBuild_DetectsDanglingSuccessor(t *testing.T) {
	b := newRows("d").question("q1", KindFreeText, "ghost")
	_, err := Build(b.rows)
	requireIntegrityError(t, err, "ghost")
}

func TestBuild_RequiresEntry(t *testing.T) {
	b := newRows("e").question("q1", KindFreeText, "")
	b.rows.Questions[0].IsEntry = false
	_, err := Build(b.rows)
	requireIntegrityError(t, err, "no entry")
}

func TestBuild_RejectsMultipleEntries(t *testing.T) {
	b := newRows("e").question("q1", KindFreeText, "q2").question("q2", KindFreeText, "")
	b.rows.Questions[1].IsEntry = true
	_, err := Build(b.rows)
	requireIntegrityError(t, err, "multiple entry")
}

func TestBuild_EmptyInput(t *testing.T) {
	_, err := Build(newRows("empty").rows)
	requireIntegrityError(t, err, "no entry")
}

func TestBuild_DetectsDuplicateQuestion(t *testing.T) {
	b := newRows("dup").question("q1", KindFreeText, "").question("q1", KindFreeText, "")
	_, err := Build(b.rows)
	requireIntegrityError(t, err, "duplicate")
}

func TestBuild_DetectsDuplicateOption(t *testing.T) {
	b := newRows("dup").
		question("q1", KindSingleChoice, "").
		option("q1", "a", "").
		option("q1", "a", "")
	_, err := Build(b.rows)
	requireIntegrityError(t, err, `duplicate option ID "a"`)
}

func TestBuild_DetectsOptionSharedAcrossQuestions(t *testing.T) {
	b := newRows("shared").
		question("q1", KindSingleChoice, "").
		question("q2", KindSingleChoice, "").
		option("q1", "yes", "q2").
		option("q2", "yes", "")
	_, err := Build(b.rows)
	requireIntegrityError(t, err, `option ID "yes" used by questions "q1" and "q2"`)
}

func TestBuild_DetectsUnknownKind(t *testing.T) {
	b := newRows("k").question("q1", Kind("slider"), "")
	_, err := Build(b.rows)
	requireIntegrityError(t, err, "slider")
}

func TestBuild_DetectsOrphanOption(t *testing.T) {
	b := newRows("o").question("q1", KindFreeText, "").option("ghost", "a", "")
	_, err := Build(b.rows)
	requireIntegrityError(t, err, "unknown question")
}

func TestBuild_ChoiceWithoutOptions(t *testing.T) {
	b := newRows("c").question("q1", KindSingleChoice, "")
	_, err := Build(b.rows)
	requireIntegrityError(t, err, "no options")
}

func TestBuild_CollectsAllProblems(t *testing.T) {
	b := newRows("many").
		question("q1", KindSingleChoice, "").
		option("q1", "a", "nowhere").
		question("q2", Kind("bogus"), "")
	b.rows.Questions[0].IsEntry = false

	_, err := Build(b.rows)
	var die *DataIntegrityError
	if !errors.As(err, &die) {
		t.Fatalf("expected *DataIntegrityError, got %v", err)
	}
	if len(die.Problems) != 3 {
		t.Errorf("problems = %d, want 3: %v", len(die.Problems), die.Problems)
	}
}

func TestBuild_MalformedRuleIsKept(t *testing.T) {
	g := newRows("r").
		question("q1", KindFreeText, "q2").
		question("q2", KindFreeText, "").
		rule("q2", `{"operator": "xor"`).
		build(t)

	q2, _ := g.Node("q2")
	if q2.Visibility == nil {
		t.Fatal("expected rule to be kept")
	}
	if q2.Visibility.Valid() {
		t.Error("expected rule to be invalid")
	}
}

func TestBuild_BranchingIsNotLinear(t *testing.T) {
	g := newRows("b").
		question("q1", KindSingleChoice, "").
		option("q1", "a", "q2").
		option("q1", "b", "").
		question("q2", KindFreeText, "").
		build(t)
	if g.IsLinear() {
		t.Error("expected branching graph")
	}
	if g.At(1).ID != "q2" || g.At(9) != nil {
		t.Error("At returned unexpected nodes")
	}
}

func TestBuild_KeepsScores(t *testing.T) {
	b := newRows("s").question("q1", KindSingleChoice, "")
	b.rows.Options = []store.OptionRow{{ID: "a", QuestionID: "q1", Score: intPtr(4)}}
	b.rows.Questionnaire.Scored = true
	g := b.build(t)

	q, _ := g.Node("q1")
	if v, ok := q.Numeric(Answer{QuestionID: "q1", OptionIDs: []string{"a"}}); !ok || v != 4 {
		t.Errorf("Numeric = %d, %v; want 4, true", v, ok)
	}
	if !g.Scored() {
		t.Error("expected scored questionnaire")
	}
}
