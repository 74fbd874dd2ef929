package nlu

import "context"

// Classification is the structured output of the external language service.
type Classification struct {
	Intent                string            `json:"intent"`
	Confidence            float64           `json:"confidence"`
	Entities              map[string]string `json:"entities"`
	ClarificationNeeded   bool              `json:"clarification_needed"`
	ClarificationQuestion string            `json:"clarification_question,omitempty"`
}

// Classifier is the narrow contract the dialogue engine consumes. Transport
// and parse failures are returned as errors; callers treat them as an
// unrecognized intent with confidence 0.
type Classifier interface {
	Classify(ctx context.Context, utterance string, historyTail []string) (*Classification, error)
}
