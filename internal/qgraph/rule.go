package qgraph

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Operator combines the conditions of a visibility rule.
type Operator string

const (
	OpAll Operator = "all" // every condition must hold
	OpAny Operator = "any" // at least one condition must hold
)

// Condition holds when the answer to QuestionID selected one of OptionIDs.
type Condition struct {
	QuestionID string   `json:"question_id"`
	OptionIDs  []string `json:"option_ids"`
}

// Rule gates a question on prior answers. A rule that failed to parse keeps
// its raw text and error; it evaluates as always visible.
type Rule struct {
	Operator   Operator    `json:"operator"`
	Conditions []Condition `json:"conditions"`

	Raw string `json:"-"`
	Err error  `json:"-"`
}

// Valid reports whether the rule parsed successfully.
func (r *Rule) Valid() bool {
	return r != nil && r.Err == nil
}

const ruleSchemaURL = "schema://visibility-rule.json"

// ruleSchemaDoc is the accepted shape of visibility-rule JSON.
const ruleSchemaDoc = `{
  "type": "object",
  "required": ["operator", "conditions"],
  "properties": {
    "operator": {"type": "string", "enum": ["all", "any", "all_of", "any_of"]},
    "conditions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["question_id", "option_ids"],
        "properties": {
          "question_id": {"type": "string", "minLength": 1},
          "option_ids": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`

var compileRuleSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(ruleSchemaDoc))
	if err != nil {
		return nil, fmt.Errorf("parse rule schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(ruleSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	return c.Compile(ruleSchemaURL)
})

// ParseRule decodes visibility-rule JSON. It returns nil for blank input and
// never fails: problems are recorded on Rule.Err.
func ParseRule(raw string) *Rule {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil
	}

	r := &Rule{Raw: raw}

	inst, err := jsonschema.UnmarshalJSON(strings.NewReader(raw))
	if err != nil {
		r.Err = fmt.Errorf("invalid JSON: %w", err)
		return r
	}

	sch, err := compileRuleSchema()
	if err != nil {
		r.Err = err
		return r
	}
	if err := sch.Validate(inst); err != nil {
		r.Err = fmt.Errorf("schema validation failed: %w", err)
		return r
	}

	if err := json.Unmarshal([]byte(raw), r); err != nil {
		r.Err = fmt.Errorf("decode rule: %w", err)
		return r
	}
	switch r.Operator {
	case "all_of":
		r.Operator = OpAll
	case "any_of":
		r.Operator = OpAny
	}
	return r
}

// Verdict is the outcome of evaluating a question's visibility.
type Verdict int

const (
	VerdictAlways     Verdict = iota // No rule: always shown
	VerdictShown                     // Rule evaluated true
	VerdictHidden                    // Rule evaluated false
	VerdictUnparsable                // Malformed rule: shown
)

func (v Verdict) String() string {
	switch v {
	case VerdictAlways:
		return "always"
	case VerdictShown:
		return "shown"
	case VerdictHidden:
		return "hidden"
	case VerdictUnparsable:
		return "unparsable"
	default:
		return "unknown"
	}
}

// Visible reports whether the verdict lets the question be presented.
// Only an evaluated-false rule hides a question.
func (v Verdict) Visible() bool {
	return v != VerdictHidden
}

// Evaluate decides the visibility of q given the answers so far.
// It never panics; anything it cannot interpret is VerdictUnparsable.
func Evaluate(q *Question, answers Answers) (v Verdict) {
	defer func() {
		if recover() != nil {
			v = VerdictUnparsable
		}
	}()

	if q == nil || q.Visibility == nil {
		return VerdictAlways
	}
	r := q.Visibility
	if r.Err != nil {
		return VerdictUnparsable
	}

	var ok bool
	switch r.Operator {
	case OpAll:
		ok = len(r.Conditions) > 0
		for _, c := range r.Conditions {
			if !c.holds(answers) {
				ok = false
				break
			}
		}
	case OpAny:
		for _, c := range r.Conditions {
			if c.holds(answers) {
				ok = true
				break
			}
		}
	default:
		return VerdictUnparsable
	}

	if ok {
		return VerdictShown
	}
	return VerdictHidden
}

// IsVisible reports whether q must be shown given the answers so far.
func IsVisible(q *Question, answers Answers) bool {
	return Evaluate(q, answers).Visible()
}

func (c Condition) holds(answers Answers) bool {
	a, ok := answers[c.QuestionID]
	if !ok {
		return false
	}
	for _, id := range c.OptionIDs {
		if a.Selected(id) {
			return true
		}
	}
	return false
}
