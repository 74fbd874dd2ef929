package extractor

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/fahim-ux/hsbc-backend-sub000/internal/pkg/logger"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/dialogue/catalog"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/nlu"
)

// Extractor pulls structured field values out of raw user text. Tier one is
// deterministic pattern rules; tier two delegates the utterance to the
// classification collaborator for free-form extraction. Extraction is pure:
// the same utterance always yields the same fields.
type Extractor struct {
	classifier nlu.Classifier
	logger     logger.ILogger
}

func New(classifier nlu.Classifier, log logger.ILogger) *Extractor {
	return &Extractor{classifier: classifier, logger: log}
}

var (
	amountPattern  = regexp.MustCompile(`(?i)\b([0-9]+(?:\.[0-9]+)?)\s*(k|grand|thousand|lakh|lakhs|million|m)?\b`)
	tenurePattern  = regexp.MustCompile(`(?i)\b([0-9]{1,3})\s*(?:months?|mos?)\b`)
	smallIntGroup  = regexp.MustCompile(`\b[0-9]{1,3}\b`)
	cardPattern    = regexp.MustCompile(`\b[0-9]{4}\b`)
	accountPattern = regexp.MustCompile(`\b[0-9]{6,16}\b`)
)

var amountScales = map[string]float64{
	"k": 1000, "grand": 1000, "thousand": 1000,
	"lakh": 100000, "lakhs": 100000,
	"million": 1000000, "m": 1000000,
}

// freeTextFields accept the whole utterance when they are the next field
// being asked for. Only free-form slots belong here.
var freeTextFields = map[string]bool{
	"subject":     true,
	"description": true,
	"query":       true,
}

// Extract returns the fields found in the utterance for the still-missing
// slots of the task, deterministic rules first, collaborator fallback second.
// First success per field wins. Values are not validated here; the
// orchestrator applies the catalog rule before accepting each one.
func (e *Extractor) Extract(ctx context.Context, task catalog.TaskType, utterance string, missing []string) map[string]string {
	fields := extractDeterministic(task, utterance, missing)

	var unresolved []string
	for _, f := range missing {
		if fields[f] == "" {
			unresolved = append(unresolved, f)
		}
	}
	if len(unresolved) == 0 || e.classifier == nil {
		return fields
	}

	result, err := e.classifier.Classify(ctx, utterance, nil)
	if err != nil {
		// Extraction ambiguity is recovered by the orchestrator re-asking.
		return fields
	}
	for _, f := range unresolved {
		if v, ok := result.Entities[f]; ok && strings.TrimSpace(v) != "" {
			fields[f] = strings.TrimSpace(v)
		}
	}
	return fields
}

// span marks a region of the utterance already claimed by a field, so a
// single token can never satisfy two different slots.
type span struct{ start, end int }

func overlaps(spans []span, start, end int) bool {
	for _, s := range spans {
		if start < s.end && end > s.start {
			return true
		}
	}
	return false
}

func extractDeterministic(task catalog.TaskType, utterance string, missing []string) map[string]string {
	fields := make(map[string]string)
	var consumed []span

	missingSet := make(map[string]bool, len(missing))
	for _, f := range missing {
		missingSet[f] = true
	}

	// Fields are processed in catalog order so identifier rules claim their
	// tokens before the looser amount rule sees them.
	for _, step := range orderedFields(task) {
		if !missingSet[step] {
			continue
		}
		value, loc := matchField(task, step, utterance, consumed)
		if value == "" {
			continue
		}
		fields[step] = value
		consumed = append(consumed, loc)
	}

	// Whole-utterance capture for the next free-form slot. Spans claimed by
	// other fields don't suppress it: "my card was charged twice" is still the
	// complaint subject even though "card" satisfied the category enum.
	if len(missing) > 0 {
		next := missing[0]
		if freeTextFields[next] && fields[next] == "" {
			if text := strings.TrimSpace(utterance); text != "" {
				fields[next] = text
			}
		}
	}

	return fields
}

func orderedFields(task catalog.TaskType) []string {
	return catalog.Lookup(task).RequiredFields
}

func matchField(task catalog.TaskType, field, utterance string, consumed []span) (string, span) {
	switch field {
	case "amount":
		return matchAmount(utterance, consumed)
	case "tenure":
		return matchTenure(utterance, consumed)
	case "card_number":
		return matchPattern(cardPattern, utterance, consumed)
	case "to_account":
		return matchPattern(accountPattern, utterance, consumed)
	default:
		if rule, ok := catalog.FieldRule(task, field); ok && rule.Kind == catalog.RuleEnum {
			return matchEnum(rule.Allowed, utterance, consumed)
		}
	}
	return "", span{}
}

func matchAmount(utterance string, consumed []span) (string, span) {
	for _, m := range amountPattern.FindAllStringSubmatchIndex(utterance, -1) {
		if overlaps(consumed, m[0], m[1]) {
			continue
		}
		value, err := strconv.ParseFloat(utterance[m[2]:m[3]], 64)
		if err != nil {
			continue
		}
		if m[4] != -1 {
			if scale, ok := amountScales[strings.ToLower(utterance[m[4]:m[5]])]; ok {
				value *= scale
			}
		}
		return strconv.FormatFloat(value, 'f', -1, 64), span{m[0], m[1]}
	}
	return "", span{}
}

func matchTenure(utterance string, consumed []span) (string, span) {
	// "36 months" beats a bare number
	if m := tenurePattern.FindStringSubmatchIndex(utterance); m != nil && !overlaps(consumed, m[0], m[1]) {
		return utterance[m[2]:m[3]], span{m[0], m[1]}
	}
	return matchPattern(smallIntGroup, utterance, consumed)
}

func matchPattern(pattern *regexp.Regexp, utterance string, consumed []span) (string, span) {
	for _, m := range pattern.FindAllStringIndex(utterance, -1) {
		if overlaps(consumed, m[0], m[1]) {
			continue
		}
		return utterance[m[0]:m[1]], span{m[0], m[1]}
	}
	return "", span{}
}

func matchEnum(allowed []string, utterance string, consumed []span) (string, span) {
	lower := strings.ToLower(utterance)
	for _, candidate := range allowed {
		idx := strings.Index(lower, candidate)
		if idx == -1 || overlaps(consumed, idx, idx+len(candidate)) {
			continue
		}
		// word-boundary containment check
		if idx > 0 && isWordChar(lower[idx-1]) {
			continue
		}
		end := idx + len(candidate)
		if end < len(lower) && isWordChar(lower[end]) {
			continue
		}
		return candidate, span{idx, end}
	}
	return "", span{}
}

func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
