package intent

import (
	"context"
	"strings"

	"github.com/fahim-ux/hsbc-backend-sub000/internal/pkg/logger"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/dialogue/catalog"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/nlu"
)

// Detection is the router's verdict on an utterance.
type Detection struct {
	Task               catalog.TaskType
	Confidence         float64
	Entities           map[string]string
	NeedsClarification bool
	Question           string
}

// Router decides which task an utterance expresses. Cold-start detection
// delegates to the classification collaborator; mid-flow interruption is a
// deterministic vocabulary scan so it never costs a network round trip.
type Router struct {
	classifier nlu.Classifier
	threshold  float64
	logger     logger.ILogger
}

func NewRouter(classifier nlu.Classifier, threshold float64, log logger.ILogger) *Router {
	if threshold <= 0 {
		threshold = 0.6
	}
	return &Router{classifier: classifier, threshold: threshold, logger: log}
}

// intentAliases maps collaborator labels to known task types. Labels outside
// this table resolve to general_inquiry.
var intentAliases = map[string]catalog.TaskType{
	"balance_inquiry":    catalog.TaskBalanceInquiry,
	"balance":            catalog.TaskBalanceInquiry,
	"check_balance":      catalog.TaskBalanceInquiry,
	"transfer":           catalog.TaskTransfer,
	"transfer_money":     catalog.TaskTransfer,
	"send_money":         catalog.TaskTransfer,
	"card_block":         catalog.TaskCardBlock,
	"block_card":         catalog.TaskCardBlock,
	"loan_apply":         catalog.TaskLoanApply,
	"loan":               catalog.TaskLoanApply,
	"apply_loan":         catalog.TaskLoanApply,
	"complaint_file":     catalog.TaskComplaintFile,
	"complaint":          catalog.TaskComplaintFile,
	"information_lookup": catalog.TaskInformationLookup,
	"information":        catalog.TaskInformationLookup,
	"faq":                catalog.TaskInformationLookup,
	"general_inquiry":    catalog.TaskGeneralInquiry,
}

// Detect performs cold-start intent detection through the collaborator.
// Collaborator failure is returned as an error; the orchestrator treats it as
// an unrecognized intent.
func (r *Router) Detect(ctx context.Context, utterance string, historyTail []string) (*Detection, error) {
	result, err := r.classifier.Classify(ctx, utterance, historyTail)
	if err != nil {
		return nil, err
	}

	if result.ClarificationNeeded {
		return &Detection{
			NeedsClarification: true,
			Question:           result.ClarificationQuestion,
			Confidence:         result.Confidence,
		}, nil
	}

	task, known := intentAliases[result.Intent]
	if !known || result.Confidence < r.threshold {
		task = catalog.TaskGeneralInquiry
	}

	r.logger.Debug("IntentRouter", "Cold-start detection", map[string]interface{}{
		"intent":     result.Intent,
		"task":       string(task),
		"confidence": result.Confidence,
	})

	return &Detection{
		Task:       task,
		Confidence: result.Confidence,
		Entities:   result.Entities,
	}, nil
}

// switchEntry binds a vocabulary set to a task. Entries are evaluated in
// order; the first match wins, which makes the tie-break rule explicit.
type switchEntry struct {
	task  catalog.TaskType
	vocab []string
}

var switchTable = []switchEntry{
	{catalog.TaskCardBlock, []string{"block", "freeze", "lost card", "stolen card", "card stolen"}},
	{catalog.TaskLoanApply, []string{"loan", "borrow", "emi"}},
	{catalog.TaskTransfer, []string{"transfer", "send money", "pay", "payment"}},
	{catalog.TaskBalanceInquiry, []string{"balance", "how much money", "how much do i have"}},
	{catalog.TaskComplaintFile, []string{"complaint", "complain", "issue", "problem", "not working"}},
	{catalog.TaskInformationLookup, []string{"what is", "what are", "how do", "how to", "tell me about", "interest rate"}},
}

// DetectSwitch scans the utterance for task-signaling vocabulary. It returns
// the empty task type when nothing matches, in which case the current task
// continues uninterrupted. Purely lexical: safe to run on every turn.
func (r *Router) DetectSwitch(utterance string) catalog.TaskType {
	return MatchVocabulary(utterance)
}

// MatchVocabulary is the table lookup behind DetectSwitch, exposed for
// direct testing of the priority order. Phrases match on word boundaries so
// "repay" never triggers the transfer vocabulary.
func MatchVocabulary(utterance string) catalog.TaskType {
	lower := strings.ToLower(utterance)
	for _, entry := range switchTable {
		for _, phrase := range entry.vocab {
			if containsPhrase(lower, phrase) {
				return entry.task
			}
		}
	}
	return ""
}

func containsPhrase(text, phrase string) bool {
	for from := 0; ; {
		idx := strings.Index(text[from:], phrase)
		if idx == -1 {
			return false
		}
		start := from + idx
		end := start + len(phrase)
		startOk := start == 0 || !isWordChar(text[start-1])
		endOk := end == len(text) || !isWordChar(text[end])
		if startOk && endOk {
			return true
		}
		from = start + 1
	}
}

func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '\''
}
