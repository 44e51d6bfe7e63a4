package qgraph

import "fmt"

// Step is the outcome of advancing from an answered question.
type Step struct {
	// Next is the question to present; nil when Completed.
	Next *Question

	// Completed is set when the walk reached the end of the graph.
	Completed bool

	// Skipped lists hidden questions passed over, in order.
	Skipped []string

	// SkipLimitHit is set when the skip bound was exhausted and Next is
	// shown despite being hidden.
	SkipLimitHit bool
}

// ChosenOption returns the edge an answer follows: the first selected option
// in option order for choice kinds, the first (usually phantom) option
// otherwise. It returns nil when a choice answer selects nothing known.
func ChosenOption(q *Question, a Answer) *Option {
	if !q.Kind.IsChoice() {
		return q.FirstOption()
	}
	for _, o := range q.Options {
		if a.Selected(o.ID) {
			return o
		}
	}
	return nil
}

// Next determines the question that follows from after it was answered with
// a. answers must already include a. Hidden questions are skipped by taking
// their own first option's edge, at most maxSkips times (maxSkips <= 0 means
// the node count); past that bound the current node is shown.
func (g *Graph) Next(from *Question, a Answer, answers Answers, maxSkips int) (Step, error) {
	if maxSkips <= 0 {
		maxSkips = g.Len()
	}

	opt := ChosenOption(from, a)
	if opt == nil {
		return Step{}, &ValidationError{QuestionID: from.ID, Reason: "answer selects no option of this question"}
	}
	if opt.IsTerminal() {
		return Step{Completed: true}, nil
	}

	node, err := g.target(from, opt)
	if err != nil {
		return Step{}, err
	}

	var step Step
	for !IsVisible(node, answers) {
		if len(step.Skipped) >= maxSkips {
			step.SkipLimitHit = true
			break
		}
		step.Skipped = append(step.Skipped, node.ID)

		def := node.FirstOption()
		if def == nil || def.IsTerminal() {
			step.Completed = true
			return step, nil
		}
		if node, err = g.target(node, def); err != nil {
			return Step{}, err
		}
	}

	step.Next = node
	return step, nil
}

func (g *Graph) target(from *Question, o *Option) (*Question, error) {
	node, ok := g.nodes[o.Next]
	if !ok {
		return nil, &DataIntegrityError{
			QuestionnaireID: g.id,
			Problems:        []string{fmt.Sprintf("option %q of question %q references nonexistent question %q", o.ID, from.ID, o.Next)},
		}
	}
	return node, nil
}
