package qgraph

// LinearProgress locates the current question within a non-branching
// questionnaire.
type LinearProgress struct {
	Current int // 1-based position among visible questions, 0 if unknown
	Total   int // number of visible questions
}

// Linear returns the position of currentID within the visibility-filtered
// ordered question list. The current question is always counted, even if
// its rule would hide it.
func (g *Graph) Linear(currentID string, answers Answers) LinearProgress {
	var p LinearProgress
	for _, q := range g.ordered {
		isCurrent := q.ID == currentID
		if !isCurrent && !IsVisible(q, answers) {
			continue
		}
		p.Total++
		if isCurrent {
			p.Current = p.Total
		}
	}
	return p
}

// GraphProgress summarizes progress through branching content.
//
// EstimatedTotal is approximate: the true total depends on branch choices
// not yet made. It counts the answers so far plus the unanswered visible
// questions on the current question's default path.
type GraphProgress struct {
	Answered       int
	Completed      bool
	EstimatedTotal int
}

// Estimate returns graph-based progress for a session positioned at currentID.
func (g *Graph) Estimate(currentID string, answers Answers, completed bool) GraphProgress {
	p := GraphProgress{
		Answered:  answers.Count(),
		Completed: completed,
	}
	if completed {
		p.EstimatedTotal = p.Answered
		return p
	}

	remaining := 0
	seen := make(map[string]bool)
	node := g.nodes[currentID]
	for node != nil && !seen[node.ID] {
		seen[node.ID] = true
		if a, ok := answers[node.ID]; (!ok || a.IsEmpty()) && IsVisible(node, answers) {
			remaining++
		}
		def := node.FirstOption()
		if def == nil || def.IsTerminal() {
			break
		}
		node = g.nodes[def.Next]
	}

	p.EstimatedTotal = p.Answered + remaining
	return p
}
