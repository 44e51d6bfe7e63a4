package qgraph

import (
	"fmt"
	"strings"
)

// DataIntegrityError reports content that cannot form a valid graph:
// dangling branch targets, missing or duplicate entry points or unknown
// kinds. It is fatal and never retried.
type DataIntegrityError struct {
	QuestionnaireID string
	Problems        []string
}

func (e *DataIntegrityError) Error() string {
	if len(e.Problems) == 1 {
		return fmt.Sprintf("questionnaire %q integrity check failed: %s", e.QuestionnaireID, e.Problems[0])
	}
	return fmt.Sprintf("questionnaire %q integrity check failed:\n  %s", e.QuestionnaireID, strings.Join(e.Problems, "\n  "))
}

// ValidationError reports an answer whose shape does not fit the question kind.
type ValidationError struct {
	QuestionID string
	Reason     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid answer for question %q: %s", e.QuestionID, e.Reason)
}
