package qgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gated(raw string) *Question {
	return &Question{ID: "gated", Kind: KindFreeText, Visibility: ParseRule(raw)}
}

func chose(questionID string, optionIDs ...string) Answer {
	return Answer{QuestionID: questionID, OptionIDs: optionIDs}
}

func TestParseRule_Blank(t *testing.T) {
	assert.Nil(t, ParseRule(""))
	assert.Nil(t, ParseRule("   "))
	assert.Nil(t, ParseRule("null"))
}

func TestParseRule_Valid(t *testing.T) {
	r := ParseRule(`{"operator":"any_of","conditions":[{"question_id":"q1","option_ids":["a","b"]}]}`)
	require.NotNil(t, r)
	require.NoError(t, r.Err)
	assert.Equal(t, OpAny, r.Operator)
	require.Len(t, r.Conditions, 1)
	assert.Equal(t, []string{"a", "b"}, r.Conditions[0].OptionIDs)
}

func TestParseRule_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"truncated", `{"operator":"all"`},
		{"unknown operator", `{"operator":"xor","conditions":[]}`},
		{"missing conditions", `{"operator":"all"}`},
		{"wrong type", `["all"]`},
		{"condition without question", `{"operator":"all","conditions":[{"option_ids":["a"]}]}`},
		{"option ids not strings", `{"operator":"all","conditions":[{"question_id":"q1","option_ids":[1]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ParseRule(tt.raw)
			require.NotNil(t, r)
			assert.Error(t, r.Err)
			assert.False(t, r.Valid())
			assert.Equal(t, tt.raw, r.Raw)
		})
	}
}

func TestEvaluate(t *testing.T) {
	allRule := `{"operator":"all","conditions":[{"question_id":"q1","option_ids":["yes"]},{"question_id":"q2","option_ids":["a","b"]}]}`
	anyRule := `{"operator":"any","conditions":[{"question_id":"q1","option_ids":["yes"]},{"question_id":"q2","option_ids":["a"]}]}`

	tests := []struct {
		name    string
		q       *Question
		answers Answers
		want    Verdict
	}{
		{"no rule", &Question{ID: "x"}, nil, VerdictAlways},
		{"nil question", nil, nil, VerdictAlways},
		{"malformed", gated(`{{{`), Answers{}, VerdictUnparsable},
		{"all satisfied", gated(allRule), Answers{"q1": chose("q1", "yes"), "q2": chose("q2", "b")}, VerdictShown},
		{"all partly satisfied", gated(allRule), Answers{"q1": chose("q1", "yes"), "q2": chose("q2", "c")}, VerdictHidden},
		{"all missing answer", gated(allRule), Answers{"q1": chose("q1", "yes")}, VerdictHidden},
		{"all with no conditions", gated(`{"operator":"all","conditions":[]}`), Answers{}, VerdictHidden},
		{"any one satisfied", gated(anyRule), Answers{"q2": chose("q2", "a")}, VerdictShown},
		{"any none satisfied", gated(anyRule), Answers{"q1": chose("q1", "no")}, VerdictHidden},
		{"any with no conditions", gated(`{"operator":"any","conditions":[]}`), Answers{}, VerdictHidden},
		{"multiple selection matches", gated(anyRule), Answers{"q2": chose("q2", "z", "a")}, VerdictShown},
		{"nil answers", gated(anyRule), nil, VerdictHidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.q, tt.answers)
			assert.Equal(t, tt.want, got, "verdict %s", got)
			assert.Equal(t, tt.want != VerdictHidden, IsVisible(tt.q, tt.answers))
		})
	}
}

func TestEvaluate_HandBuiltRulesFailOpen(t *testing.T) {
	// Rules constructed in code bypass ParseRule; they must still fail open.
	q := &Question{ID: "x", Visibility: &Rule{Operator: "nand"}}
	assert.Equal(t, VerdictUnparsable, Evaluate(q, Answers{}))
	assert.True(t, IsVisible(q, Answers{}))
}

func TestEvaluate_NeverPanics(t *testing.T) {
	inputs := []string{
		``, `null`, `0`, `"all"`, `{}`, `[]`, `{"operator":null}`,
		`{"operator":"all","conditions":null}`,
		`{"operator":"all","conditions":[null]}`,
		`{"operator":"any","conditions":[{"question_id":"","option_ids":null}]}`,
		`{"operator":"all","conditions":[{"question_id":"q1","option_ids":["a"]}],"extra":true}`,
	}
	answers := []Answers{nil, {}, {"q1": chose("q1", "a")}, {"q1": {QuestionID: "q1", Text: "hi"}}}

	for _, raw := range inputs {
		for _, a := range answers {
			assert.NotPanics(t, func() {
				_ = IsVisible(gated(raw), a)
			}, "rule %s", raw)
		}
	}
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "hidden", VerdictHidden.String())
	assert.Equal(t, "unparsable", VerdictUnparsable.String())
	assert.True(t, VerdictUnparsable.Visible())
}
